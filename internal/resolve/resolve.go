// Package resolve maps a parsed request to the content that answers it.
//
// Paths are used literally. A request such as "GET /../../etc/passwd" is
// looked up as written, relative to the document root; there is no
// traversal protection.
package resolve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devwelkin/hermes-lite/internal/request"
	"github.com/devwelkin/hermes-lite/internal/response"
)

var ErrResourceNotFound = errors.New("resource not found")

// Kind tags a Result.
type Kind int

const (
	Default Kind = iota
	Found
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Default:
		return "default"
	case Found:
		return "found"
	case NotFound:
		return "not found"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Result is the outcome of resolving one request. File is set only for Found
// and is owned by whoever renders the result; Err is set only for NotFound.
type Result struct {
	Kind Kind
	Path string
	File *os.File
	Err  error
}

// Status is the response status that goes with the result.
func (r Result) Status() response.StatusCode {
	if r.Kind == NotFound {
		return response.StatusNotFound
	}
	return response.StatusOK
}

// Close releases the file of a Found result. It is safe on any result.
func (r Result) Close() error {
	if r.File == nil {
		return nil
	}
	return r.File.Close()
}

type Resolver struct {
	root string
}

// New returns a Resolver that looks paths up under root. An empty root is
// the working directory.
func New(root string) *Resolver {
	if root == "" {
		root = "."
	}
	return &Resolver{root: root}
}

func (rs *Resolver) Root() string {
	return rs.root
}

// Resolve produces exactly one Result for req.
func (rs *Resolver) Resolve(req *request.Request) Result {
	if req.IsRoot() {
		return Result{Kind: Default, Path: request.RootPath}
	}

	full := filepath.Join(rs.root, filepath.FromSlash(req.ResourcePath))

	f, err := os.Open(full)
	if err != nil {
		return notFound(req.ResourcePath, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return notFound(req.ResourcePath, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return notFound(req.ResourcePath, fmt.Errorf("%s is not a regular file", full))
	}

	return Result{Kind: Found, Path: req.ResourcePath, File: f}
}

func notFound(path string, cause error) Result {
	return Result{
		Kind: NotFound,
		Path: path,
		Err:  fmt.Errorf("%w: %s: %w", ErrResourceNotFound, path, cause),
	}
}
