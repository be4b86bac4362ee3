package operations

import (
	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

var destructive = map[string]bool{
	types.OpDelete:          true,
	types.OpChangeOwner:     true,
	types.OpFileChangeOwner: true,
}

// LegalOperations returns the descriptors applicable to entry, in catalogue
// order. With multiSelect set only multi-select capable descriptors remain.
func LegalOperations(entry types.Entry, catalogue []types.OperationDescriptor, multiSelect bool) []types.OperationDescriptor {
	legal := make([]types.OperationDescriptor, 0, len(catalogue))
	for _, d := range catalogue {
		if !supportsKind(d, entry) {
			continue
		}
		if !acceptsEntry(d, entry) {
			continue
		}
		if multiSelect && !d.SupportsMultiSelect {
			continue
		}
		legal = append(legal, d)
	}
	return legal
}

func supportsKind(d types.OperationDescriptor, entry types.Entry) bool {
	if entry.IsDirectory {
		return d.SupportsDirectory
	}
	return d.SupportsFile
}

func acceptsEntry(d types.OperationDescriptor, entry types.Entry) bool {
	if d.AcceptsAnyExtension() {
		return true
	}
	if entry.IsDirectory && d.SupportsDirectory {
		return true
	}
	return d.AcceptsExtension(entry.Extension())
}

// BuildPayload shapes the path part of an operation request. Multi-select
// descriptors always receive a list, falling back to the entry itself when
// nothing is selected.
func BuildPayload(d types.OperationDescriptor, selection []string, entry types.Entry) types.Payload {
	if !d.SupportsMultiSelect {
		return types.Payload{types.SelectPathKey: entry.Path}
	}
	if len(selection) == 0 {
		return types.Payload{types.SelectedPathsKey: []string{entry.Path}}
	}
	paths := make([]string, len(selection))
	copy(paths, selection)
	return types.Payload{types.SelectedPathsKey: paths}
}

// NeedsParameterForm reports whether the user must supply anything beyond
// the implicit path key.
func NeedsParameterForm(d types.OperationDescriptor) bool {
	key := d.PathKey()
	for _, p := range d.ParamSchema {
		if p.Key != key {
			return true
		}
	}
	return false
}

// IsDestructive reports whether opType must be confirmed before it runs.
func IsDestructive(opType string) bool {
	return destructive[opType]
}

// TargetPaths lists the paths a payload acts on.
func TargetPaths(p types.Payload) []string {
	switch v := p[types.SelectedPathsKey].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	if s, ok := p[types.SelectPathKey].(string); ok && s != "" {
		return []string{s}
	}
	return nil
}
