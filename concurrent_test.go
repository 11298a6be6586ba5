package modelxml_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/jacoelho/modelxml"
	harness "github.com/jacoelho/modelxml/internal/testing"
)

func TestReaderWriterConcurrent(t *testing.T) {
	doc := `<props:root xmlns:props="http://properties" id="Root">` +
		`<props:referencingSingle id="S" referencedComplex="C" />` +
		`<props:complex id="C" /></props:root>`

	reg := harness.Registry(t, "properties")
	r, err := modelxml.NewReader(reg, modelxml.NewReadOptions())
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	w, err := modelxml.NewWriter(reg, modelxml.NewWriteOptions().WithPreamble(false))
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	root, err := r.Handler("props:Root")
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}

	const goroutines = 8
	const iterations = 25

	errCh := make(chan error, goroutines*iterations)
	outCh := make(chan string, goroutines*iterations)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				res, err := r.FromXMLWithHandler(context.Background(), strings.NewReader(doc), root)
				if err != nil {
					errCh <- err
					return
				}
				out, err := w.ToXML(res.Root)
				if err != nil {
					errCh <- err
					return
				}
				outCh <- out
			}
		}()
	}
	wg.Wait()
	close(errCh)
	close(outCh)

	for err := range errCh {
		t.Fatalf("concurrent read/write error: %v", err)
	}
	for out := range outCh {
		if out != doc {
			t.Fatalf("output = %s, want %s", out, doc)
		}
	}
}

func TestSharedTreeConcurrentReads(t *testing.T) {
	reg := harness.Registry(t, "properties")
	r, err := modelxml.NewReader(reg, modelxml.NewReadOptions())
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	w, err := modelxml.NewWriter(reg, modelxml.NewWriteOptions().WithPreamble(false))
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	doc := `<props:containedCollection xmlns:props="http://properties" id="R" />`
	res, err := r.FromXML(context.Background(), strings.NewReader(doc), "props:ContainedCollection")
	if err != nil {
		t.Fatalf("FromXML: %v", err)
	}

	const goroutines = 8
	errCh := make(chan error, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for _, p := range res.Root.Type().Properties {
				_ = res.Root.Get(p.Name)
				if p.IsMany {
					_ = res.Root.List(p.Name)
				}
			}
			if _, err := w.ToXML(res.Root); err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Fatalf("concurrent write error: %v", err)
	}
	for _, p := range res.Root.Type().Properties {
		if p.IsMany && res.Root.Has(p.Name) {
			t.Fatalf("reading %s stored a value", p.Name)
		}
	}
}
