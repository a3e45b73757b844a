package translation

import "github.com/goliatone/go-ils/core"

var _ core.Translator = (*Catalog)(nil)
