package screen

import "errors"

const (
	MsgNoCategories   = "Cadastre algumas categorias."
	MsgSelectCategory = "Marque uma categoria."
)

// ErrNoSession is returned by product writes attempted without a signed-in
// user; nothing is sent.
var ErrNoSession = errors.New("no authenticated user")

// ValidationError is raised before any request is made. Its message is the
// only error text a screen shows to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
