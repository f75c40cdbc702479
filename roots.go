package mcp

import "strings"

// Root is a file-system anchor the client exposes to the server. URI
// must begin with "file://".
type Root struct {
	URI  string  `json:"uri"`
	Name *string `json:"name,omitempty"`
}

// NewRoot validates the file:// invariant before constructing a Root.
func NewRoot(uri string, name *string) (Root, error) {
	if !strings.HasPrefix(uri, "file://") {
		return Root{}, &ProtocolError{Reason: "root uri must begin with file://: " + uri}
	}
	return Root{URI: uri, Name: name}, nil
}

// ListRootsResult is the result of roots/list.
type ListRootsResult struct {
	Roots []Root `json:"roots"`
}
