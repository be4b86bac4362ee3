package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/FileFlex/client/internal/domain/navigation"
	"github.com/GriffinCanCode/FileFlex/client/internal/domain/operations"
	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

// Built-in action identifiers. Backend operations use their type.
const (
	ActionMultiSelect       = "multiSelect"
	ActionCancelMultiSelect = "cancelMultiSelect"
	ActionGoToFolder        = "goto"
	ActionManageTags        = "manageTags"
	ActionDownload          = "download"
	ActionEdit              = "edit"
)

// SearchScope tells where a listed entry came from.
type SearchScope string

const (
	ScopeLocal  SearchScope = "local"
	ScopeRemote SearchScope = "remote"
)

// Action is one entry of an action menu.
type Action struct {
	ID        string
	Label     string
	Danger    bool
	Operation *types.OperationDescriptor
}

// OutcomeKind tells the front end what a dispatched action produced.
type OutcomeKind int

const (
	OutcomeCancelled OutcomeKind = iota
	OutcomeTagManager
	OutcomeNavigated
	OutcomeDownload
	OutcomeEditor
	OutcomeMultiSelect
	OutcomeParamForm
	OutcomeExecuted
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeTagManager:
		return "tag-manager"
	case OutcomeNavigated:
		return "navigated"
	case OutcomeDownload:
		return "download"
	case OutcomeEditor:
		return "editor"
	case OutcomeMultiSelect:
		return "multi-select"
	case OutcomeParamForm:
		return "param-form"
	case OutcomeExecuted:
		return "executed"
	default:
		return "cancelled"
	}
}

// Outcome is the result of Dispatch, ExecuteOperation or
// SubmitParameters. Only the fields of its Kind are set.
type Outcome struct {
	Kind        OutcomeKind
	Entry       types.Entry
	Path        string
	URL         string
	Editor      *Editor
	MultiSelect bool
	Form        *PendingForm
	Result      string
}

// PendingForm is a parameter form awaiting submission.
type PendingForm struct {
	Descriptor types.OperationDescriptor
	Entry      types.Entry
	Selection  []string
	Defaults   types.Payload
}

// BuildActionMenu lists the actions offered for entry: the multi-select
// toggle, go-to-folder for remote search results, tag management outside
// multi-select, download and edit for files, then the legal backend
// operations.
func (s *Session) BuildActionMenu(entry types.Entry, isSearchResult bool, scope SearchScope) []Action {
	multi := s.MultiSelect()
	menu := make([]Action, 0, 8)

	if multi {
		menu = append(menu, Action{ID: ActionCancelMultiSelect, Label: "Cancel multi-select"})
	} else {
		menu = append(menu, Action{ID: ActionMultiSelect, Label: "Multi-select"})
	}
	if isSearchResult && scope == ScopeRemote {
		menu = append(menu, Action{ID: ActionGoToFolder, Label: "Go to folder"})
	}
	if !multi {
		menu = append(menu, Action{ID: ActionManageTags, Label: "Manage tags"})
	}
	if !entry.IsDirectory {
		menu = append(menu, Action{ID: ActionDownload, Label: "Download"})
		if operations.IsTextFile(entry) {
			menu = append(menu, Action{ID: ActionEdit, Label: "Edit"})
		}
	}
	for _, d := range operations.LegalOperations(entry, s.Catalogue.Operations(), multi) {
		label := d.Description
		if label == "" {
			label = d.Type
		}
		menu = append(menu, Action{
			ID:        d.Type,
			Label:     label,
			Danger:    operations.IsDestructive(d.Type),
			Operation: &d,
		})
	}
	return menu
}

// Dispatch runs the action id against entry.
func (s *Session) Dispatch(ctx context.Context, id string, entry types.Entry) (Outcome, error) {
	switch id {
	case ActionManageTags:
		return Outcome{Kind: OutcomeTagManager, Entry: entry}, nil
	case ActionGoToFolder:
		parent := navigation.ParentPath(entry.Path)
		if _, err := s.NavigateTo(ctx, parent); err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomeNavigated, Path: parent}, nil
	case ActionDownload:
		url, err := s.DownloadURL(entry)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomeDownload, Entry: entry, URL: url}, nil
	case ActionEdit:
		ed, err := s.OpenEditor(ctx, entry)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomeEditor, Entry: entry, Editor: ed}, nil
	case ActionMultiSelect, ActionCancelMultiSelect:
		s.mu.Lock()
		s.setMultiSelectLocked(id == ActionMultiSelect)
		s.mu.Unlock()
		return Outcome{Kind: OutcomeMultiSelect, MultiSelect: id == ActionMultiSelect}, nil
	}

	d, ok := s.Catalogue.Find(id)
	if !ok {
		return Outcome{}, &types.ValidationError{Field: "action", Message: fmt.Sprintf("operation type %q does not exist", id)}
	}
	if !s.isLegal(d, entry) {
		return Outcome{}, &types.ValidationError{Field: "action", Message: fmt.Sprintf("%s is not available for %s", d.Type, entry.Name)}
	}

	selection := s.SelectedPaths()
	if operations.NeedsParameterForm(d) {
		form := &PendingForm{
			Descriptor: d,
			Entry:      entry,
			Selection:  selection,
			Defaults:   operations.FormDefaults(d),
		}
		s.mu.Lock()
		s.pending = form
		s.mu.Unlock()
		return Outcome{Kind: OutcomeParamForm, Entry: entry, Form: form}, nil
	}
	return s.ExecuteOperation(ctx, d, operations.BuildPayload(d, selection, entry))
}

func (s *Session) isLegal(d types.OperationDescriptor, entry types.Entry) bool {
	for _, legal := range operations.LegalOperations(entry, []types.OperationDescriptor{d}, s.MultiSelect()) {
		if legal.Type == d.Type {
			return true
		}
	}
	return false
}

// ExecuteOperation sends d with params to the backend. Destructive types
// are confirmed first; a declined confirmation yields OutcomeCancelled
// and no error. On success the listing is refreshed and the selection
// cleared.
func (s *Session) ExecuteOperation(ctx context.Context, d types.OperationDescriptor, params types.Payload) (Outcome, error) {
	if operations.IsDestructive(d.Type) {
		accepted, err := s.confirm(ctx, d, params)
		if err != nil {
			return Outcome{}, err
		}
		if !accepted {
			s.metrics.RecordOperation(d.Type, "cancelled")
			s.logger.Info("operation declined", zap.String("type", d.Type))
			return Outcome{Kind: OutcomeCancelled}, nil
		}
	}

	s.logger.Info("executing operation",
		zap.String("type", d.Type),
		zap.Strings("targets", operations.TargetPaths(params)))

	result, err := s.api.ExecuteOperation(ctx, d.Type, params)
	if err != nil {
		s.metrics.RecordOperation(d.Type, "error")
		s.logger.Warn("operation failed", zap.String("type", d.Type), zap.Error(err))
		return Outcome{}, operationFailure(d, err)
	}
	s.metrics.RecordOperation(d.Type, "ok")

	s.mu.Lock()
	s.selection = nil
	s.pending = nil
	s.mu.Unlock()
	s.refreshAfter(ctx, d.Type)

	if result == "" {
		result = describe(d) + " succeeded"
	}
	return Outcome{Kind: OutcomeExecuted, Result: result}, nil
}

func (s *Session) confirm(ctx context.Context, d types.OperationDescriptor, params types.Payload) (bool, error) {
	targets := operations.TargetPaths(params)
	title := "Confirm " + describe(d)
	message := fmt.Sprintf("%s will be applied to %d item(s):", describe(d), len(targets))

	if s.confirmer == nil {
		s.metrics.RecordConfirmation(false)
		return false, nil
	}
	accepted, err := s.confirmer.Confirm(ctx, title, message, targets)
	if errors.Is(err, types.ErrCancelledByUser) {
		accepted, err = false, nil
	}
	if err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	s.metrics.RecordConfirmation(accepted)
	return accepted, nil
}

func describe(d types.OperationDescriptor) string {
	if d.Description != "" {
		return d.Description
	}
	return d.Type
}

// operationFailure surfaces the backend message when the backend gave one.
func operationFailure(d types.OperationDescriptor, err error) error {
	msg := describe(d) + " failed"
	var te *types.TransportError
	if errors.As(err, &te) && te.Code != 0 && te.Message != "" {
		msg = te.Message
	}
	out := &types.TransportError{Op: d.Type, Message: msg, Err: err}
	if te != nil {
		out.Code, out.Status = te.Code, te.Status
	}
	return out
}

// PendingParameters returns the form awaiting submission, if any.
func (s *Session) PendingParameters() *PendingForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// CancelParameters drops the pending form.
func (s *Session) CancelParameters() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

// SubmitParameters validates form against the pending descriptor, injects
// the resolved path key and executes. Validation failures keep the form
// pending.
func (s *Session) SubmitParameters(ctx context.Context, form map[string]any) (Outcome, error) {
	pending := s.PendingParameters()
	if pending == nil {
		return Outcome{}, &types.ValidationError{Message: "no operation is waiting for parameters"}
	}
	payload, err := operations.PrepareSubmission(pending.Descriptor, form, pending.Selection, pending.Entry)
	if err != nil {
		return Outcome{Kind: OutcomeParamForm, Entry: pending.Entry, Form: pending}, err
	}

	outcome, err := s.ExecuteOperation(ctx, pending.Descriptor, payload)
	s.mu.Lock()
	if s.pending == pending {
		s.pending = nil
	}
	s.mu.Unlock()
	return outcome, err
}
