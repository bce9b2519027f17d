package render

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/font/gofont/goregular"

	"go.fotopdf.dev/fotopdf/internal/settings"
)

// Font families registered on the canvas, one per role
const (
	FontTitle  = "font_title"
	FontAuthor = "font_author"
	FontText   = "font_text"
)

// ErrFontNotFound is returned when a configured font file cannot be found
var ErrFontNotFound = errors.New("font not found")

// FontError names the role and the last location looked at
type FontError struct {
	Family string
	Path   string
	Err    error
}

func (e *FontError) Error() string {
	return fmt.Sprintf("cannot find %s, looking in %s", e.Family, e.Path)
}

func (e *FontError) Unwrap() []error {
	return []error{ErrFontNotFound, e.Err}
}

// LoadFonts registers the title, author and text fonts. Roles without a
// configured file use the embedded Go Regular font.
func LoadFonts(c Canvas, s *settings.Settings) error {
	roles := []struct {
		family string
		path   string
	}{
		{FontTitle, s.Fonts.Title},
		{FontAuthor, s.Fonts.Author},
		{FontText, s.Fonts.Text},
	}

	for _, role := range roles {
		data := goregular.TTF
		if role.path != "" {
			resolved, err := s.ResolveFont(role.path)
			if err != nil {
				return &FontError{Family: role.family, Path: resolved, Err: err}
			}
			if data, err = os.ReadFile(resolved); err != nil {
				return &FontError{Family: role.family, Path: resolved, Err: err}
			}
			log.Debug().Str("family", role.family).Str("path", resolved).Msg("Font loaded")
		}
		if err := c.AddFont(role.family, data); err != nil {
			return fmt.Errorf("failed to register %s: %w", role.family, err)
		}
	}
	return nil
}
