package core

import "context"

// Editor identifies the client behind a save, as recorded in the change log.
type Editor struct {
	IP        string
	UserAgent string
}

type editorKey struct{}

// WithEditor attaches the requesting client to ctx.
func WithEditor(ctx context.Context, e Editor) context.Context {
	return context.WithValue(ctx, editorKey{}, e)
}

// EditorFrom returns the client attached by WithEditor, or the zero Editor
// for saves that did not come through HTTP.
func EditorFrom(ctx context.Context) Editor {
	e, _ := ctx.Value(editorKey{}).(Editor)
	return e
}
