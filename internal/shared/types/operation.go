package types

import "strings"

// Payload keys the backend uses to receive the selection.
const (
	SelectPathKey    = "selectPath"
	SelectedPathsKey = "selectedPaths"
)

// Payload is the parameter map sent with an operation.
type Payload map[string]any

// Operation types with special handling on the client.
const (
	OpCopy            = "COPY"
	OpMove            = "MOVE"
	OpDelete          = "DELETE"
	OpCompress        = "COMPRESS"
	OpDecompress      = "DECOMPRESS"
	OpFileIndex       = "FILE_INDEX"
	OpChangeOwner     = "CHANGE_OWNER"
	OpFileChangeOwner = "FILE_CHANGE_OWNER"
)

// OperationDescriptor is backend-declared metadata for one operation type.
type OperationDescriptor struct {
	Type                string          `json:"type"`
	Description         string          `json:"description"`
	SupportsFile        bool            `json:"supportFile"`
	SupportsDirectory   bool            `json:"supportDirectory"`
	SupportedExtensions []string        `json:"supportedExtensions"`
	IsAsyncTask         bool            `json:"isTask"`
	ParamSchema         []ParameterSpec `json:"paramConfigs"`
	IsSynchronous       bool            `json:"isSync"`
	SupportsMultiSelect bool            `json:"supportMultiSelect"`
}

// AcceptsAnyExtension reports whether the descriptor places no extension
// restriction. A missing list, an empty list, "any" and "*" all qualify.
func (d OperationDescriptor) AcceptsAnyExtension() bool {
	if len(d.SupportedExtensions) == 0 {
		return true
	}
	for _, ext := range d.SupportedExtensions {
		switch NormalizeExtension(ext) {
		case "any", "*":
			return true
		}
	}
	return false
}

// AcceptsExtension reports whether ext (with or without a leading dot) is
// listed by the descriptor.
func (d OperationDescriptor) AcceptsExtension(ext string) bool {
	ext = NormalizeExtension(ext)
	if ext == "" {
		return false
	}
	for _, candidate := range d.SupportedExtensions {
		if NormalizeExtension(candidate) == ext {
			return true
		}
	}
	return false
}

// PathKey is the payload key this descriptor receives its selection under.
func (d OperationDescriptor) PathKey() string {
	if d.SupportsMultiSelect {
		return SelectedPathsKey
	}
	return SelectPathKey
}

// NormalizeExtension lowercases ext and strips a single leading dot.
func NormalizeExtension(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}

// ParamKind classifies a parameter for form rendering and validation.
type ParamKind string

const (
	KindText       ParamKind = "text"
	KindNumber     ParamKind = "number"
	KindBoolean    ParamKind = "boolean"
	KindSelect     ParamKind = "select"
	KindPath       ParamKind = "path"
	KindList       ParamKind = "list"
	KindNestedList ParamKind = "nested-list"
)

// ParamOption is one choice of a select parameter.
type ParamOption struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// ParameterSpec describes one parameter of an operation.
type ParameterSpec struct {
	Key          string          `json:"key"`
	Label        string          `json:"name"`
	Type         string          `json:"type"`
	Required     bool            `json:"required"`
	Description  string          `json:"description,omitempty"`
	Options      []ParamOption   `json:"options,omitempty"`
	DefaultValue any             `json:"defaultValue,omitempty"`
	NestedSchema []ParameterSpec `json:"paramConfigs,omitempty"`
}

// Kind maps the backend parameter type onto a ParamKind. Unknown types are
// treated as free text.
func (p ParameterSpec) Kind() ParamKind {
	switch strings.ToUpper(p.Type) {
	case "NUMBER":
		return KindNumber
	case "BOOLEAN":
		return KindBoolean
	case "SELECT":
		return KindSelect
	case "FOLDER", "FILE", "FOLDER_FILE", "FOLDER_MULTI_SELECT", "FOLDER_FILE_MULTI_SELECT":
		return KindPath
	case "LIST":
		if len(p.NestedSchema) > 0 {
			return KindNestedList
		}
		return KindList
	default:
		return KindText
	}
}

// MultiPath reports whether a path parameter accepts several paths.
func (p ParameterSpec) MultiPath() bool {
	return strings.HasSuffix(strings.ToUpper(p.Type), "_MULTI_SELECT")
}
