// Package render draws the overlay panels. Each panel is built from a plain view model
// so layout can be tested without a running game.
package render

// Renderer draws panels with a shared font cache.
type Renderer struct {
	fonts *Fonts
}

// New returns a renderer using fonts.
func New(fonts *Fonts) *Renderer {
	return &Renderer{fonts: fonts}
}
