// Package head collects document-head metadata produced while a page renders.
//
// A Collector is created for every server render and carried in the render
// context. Components declare the page title and meta, link and script tags
// by rendering the helpers in this package; the helpers write nothing to the
// output and record the tag into the collector instead:
//
//	templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
//	    if err := head.Title("Fight Club").Render(ctx, w); err != nil {
//	        return err
//	    }
//	    return head.Meta(head.MetaTag{Name: "description", Content: "..."}).Render(ctx, w)
//	})
//
// The streaming renderer reads Fields once the shell is ready and splices the
// fragments into the template at the head marker. Fields that were never set
// are empty strings.
package head
