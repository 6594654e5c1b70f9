// Package naming turns user naming templates into safe destination paths.
//
// # Templates
//
// Templates use brace placeholders with an optional format spec:
//
//	{artist}/{album}/{track_number:02d} {title}{ext}
//
// Supported specs are d (integer), Nd (space padded), 0Nd (zero padded),
// s and Ns (left aligned string). Literal braces are written {{ and }}.
// Unknown placeholders render as empty strings.
//
// # Building paths
//
// Builder renders a template against a model.RenderContext and joins it to a
// destination root. Separators inside context values never create
// directories: they are replaced with hyphens before rendering, so the
// directory structure of the result is always the one written in the
// template. Each segment is then sanitized for the target platform:
//
//	b := naming.Builder{Root: "/music", Platform: naming.Windows}
//	p, _ := b.Build("{artist}/{title}{ext}", model.RenderContext{
//	    "artist": "AC/DC", "title": "What?", "ext": ".mp3",
//	})
//	// p == "/music/AC-DC/What_.mp3"
package naming
