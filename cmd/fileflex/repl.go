package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/FileFlex/client/internal/domain/listing"
	"github.com/GriffinCanCode/FileFlex/client/internal/domain/navigation"
	"github.com/GriffinCanCode/FileFlex/client/internal/domain/operations"
	"github.com/GriffinCanCode/FileFlex/client/internal/domain/session"
	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

const keyToken = "token"

var errQuit = errors.New("quit")

// backend is the client surface the terminal uses beyond the session.
type backend interface {
	session.API
	Login(ctx context.Context, username, password string) (string, error)
	Token() string
	Tags(ctx context.Context) ([]types.Tag, error)
	FileTags(ctx context.Context, path string) ([]types.Tag, error)
	UpdateFileTags(ctx context.Context, path string, tags types.FileTags) error
	RunningTasks(ctx context.Context) ([]types.Task, error)
	CancelTask(ctx context.Context, id int64) error
	DownloadTo(ctx context.Context, rawURL, dest string) (int64, error)
	SystemUsers(ctx context.Context) ([]string, error)
	ChangeOwner(ctx context.Context, path, owner string) error
}

type tokenStore interface {
	SetString(key, value string) error
}

type command struct {
	name  string
	usage string
	help  string
	run   func(ctx context.Context, args []string) error
}

type repl struct {
	sess     *session.Session
	api      backend
	tokens   tokenStore
	lines    *lineReader
	out      io.Writer
	logger   *zap.Logger
	color    bool
	username string

	commands []command
	byName   map[string]command

	// view is what entry numbers refer to
	view       []types.Entry
	searchView bool
}

func newREPL(sess *session.Session, api backend, tokens tokenStore, lines *lineReader, out io.Writer, logger *zap.Logger) *repl {
	r := &repl{
		sess:   sess,
		api:    api,
		tokens: tokens,
		lines:  lines,
		out:    out,
		logger: logger,
		byName: make(map[string]command),
	}
	r.commands = []command{
		{"ls", "ls", "show the current listing", r.cmdList},
		{"more", "more", "load the next page", r.cmdMore},
		{"cd", "cd <path|..|-N>", "open a folder, the parent, or history entry N", r.cmdCd},
		{"crumbs", "crumbs [N]", "show the breadcrumbs or open crumb N", r.cmdCrumbs},
		{"back", "back", "go back", r.cmdBack},
		{"history", "history", "recently visited folders", r.cmdHistory},
		{"mode", "mode <normal|folder|tags [all|any] ids...>", "switch browsing mode", r.cmdMode},
		{"select", "select <n...>", "toggle entries in the selection", r.cmdSelect},
		{"multi", "multi", "toggle multi-select mode", r.cmdMulti},
		{"all", "all", "select or clear all loaded entries", r.cmdAll},
		{"menu", "menu <n>", "show the actions for entry n", r.cmdMenu},
		{"do", "do <n> <action>", "run an action by menu number or id", r.cmdDo},
		{"form", "form key=value ... | form cancel", "submit the pending parameter form", r.cmdForm},
		{"search", "search <keyword> [page]", "search the whole store", r.cmdSearch},
		{"filter", "filter <glob|text>", "filter the loaded entries", r.cmdFilter},
		{"sort", "sort <name|size|lastModified> [desc]", "sort the loaded entries", r.cmdSort},
		{"mkdir", "mkdir <name>", "create a folder here", r.cmdMkdir},
		{"put", "put <local path>", "upload a file or folder here", r.cmdPut},
		{"get", "get <n> [dest]", "download entry n", r.cmdGet},
		{"edit", "edit <n>", "edit a text file", r.cmdEdit},
		{"cat", "cat <n>", "print a text file", r.cmdCat},
		{"ops", "ops [reload]", "list the backend operations", r.cmdOps},
		{"tasks", "tasks", "list running tasks", r.cmdTasks},
		{"cancel-task", "cancel-task <id>", "cancel a running task", r.cmdCancelTask},
		{"tags", "tags [n [ids|clear]]", "list tags, or show and set the tags of entry n", r.cmdTags},
		{"chown", "chown [n user]", "list the server accounts, or give entry n to user", r.cmdChown},
		{"login", "login", "sign in", r.cmdLogin},
		{"help", "help", "this list", r.cmdHelp},
		{"quit", "quit", "leave", func(context.Context, []string) error { return errQuit }},
	}
	for _, c := range r.commands {
		r.byName[c.name] = c
	}
	r.byName["exit"] = r.byName["quit"]
	return r
}

// Run starts the session and reads commands until quit, end of input or
// cancellation.
func (r *repl) Run(ctx context.Context) error {
	if err := r.sess.Start(ctx); err != nil {
		r.report(err)
	}
	if r.api.Token() == "" {
		fmt.Fprintln(r.out, "not signed in, use 'login'")
	}
	r.show(r.sess.Listing.Snapshot())

	for {
		line, err := r.lines.ReadLine(ctx, r.prompt())
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		cmd, ok := r.byName[args[0]]
		if !ok {
			fmt.Fprintf(r.out, "unknown command %q, try 'help'\n", args[0])
			continue
		}
		if err := cmd.run(ctx, args[1:]); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			r.report(err)
		}
	}
}

func (r *repl) prompt() string {
	p := r.sess.CurrentPath()
	if r.sess.MultiSelect() {
		return fmt.Sprintf("fileflex:%s [%d selected]> ", p, len(r.sess.Selection()))
	}
	return fmt.Sprintf("fileflex:%s> ", p)
}

func (r *repl) report(err error) {
	r.logger.Warn("command failed", zap.Error(err))

	var te *types.TransportError
	if errors.As(err, &te) && te.Unauthorized() {
		fmt.Fprintf(r.out, "error: %s (use 'login')\n", types.UserMessage(err))
		return
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			fmt.Fprintf(r.out, "error: %s\n", types.UserMessage(e))
		}
		return
	}
	fmt.Fprintf(r.out, "error: %s\n", types.UserMessage(err))
}

func (r *repl) show(snap listing.Snapshot) {
	if snap.Err != nil && len(snap.Entries) == 0 {
		fmt.Fprintf(r.out, "%s: %s\n", snap.Query.Path, types.UserMessage(snap.Err))
	}
	r.view = snap.Entries
	r.searchView = false
	renderSnapshot(r.out, snap, r.sess.IsSelected, r.color)
}

func (r *repl) showEntries(entries []types.Entry) {
	r.view = entries
	r.searchView = false
	renderEntries(r.out, entries, r.sess.IsSelected, r.color)
}

// entry resolves a 1-based number against the current view.
func (r *repl) entry(arg string) (types.Entry, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(r.view) {
		return types.Entry{}, &types.ValidationError{Field: "entry", Message: fmt.Sprintf("no entry %q in the last listing", arg)}
	}
	return r.view[n-1], nil
}

func usage(c command) error {
	return &types.ValidationError{Message: "usage: " + c.usage}
}

func (r *repl) cmdList(ctx context.Context, args []string) error {
	r.show(r.sess.Listing.Snapshot())
	return nil
}

func (r *repl) cmdMore(ctx context.Context, args []string) error {
	snap, err := r.sess.LoadMore(ctx)
	if err != nil {
		return err
	}
	r.show(snap)
	return nil
}

func (r *repl) cmdCd(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage(r.byName["cd"])
	}
	target := args[0]
	switch {
	case target == "..":
		target = navigation.ParentPath(r.sess.CurrentPath())
	case strings.HasPrefix(target, "-"):
		n, err := strconv.Atoi(target[1:])
		history := r.sess.Navigator.History()
		if err != nil || n < 1 || n > len(history) {
			return &types.ValidationError{Field: "history", Message: fmt.Sprintf("no history entry %s", target)}
		}
		target = history[n-1]
	case !strings.HasPrefix(target, "/"):
		target = navigation.Join(r.sess.CurrentPath(), target)
	}
	snap, err := r.sess.NavigateTo(ctx, target)
	r.show(snap)
	return err
}

func (r *repl) cmdCrumbs(ctx context.Context, args []string) error {
	segments := r.sess.Navigator.Segments()
	if len(args) == 0 {
		fmt.Fprintln(r.out, "  0. /")
		for i, seg := range segments {
			fmt.Fprintf(r.out, "  %d. %s\n", i+1, seg)
		}
		return nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 || n > len(segments) {
		return usage(r.byName["crumbs"])
	}
	snap, err := r.sess.NavigateToSegment(ctx, n-1)
	r.show(snap)
	return err
}

func (r *repl) cmdBack(ctx context.Context, args []string) error {
	action, err := r.sess.GoBack(ctx)
	if err != nil {
		return err
	}
	switch action {
	case navigation.BackNavigate:
		r.show(r.sess.Listing.Snapshot())
	case navigation.BackSignal:
		fmt.Fprintln(r.out, "back handled by the embedding view")
	default:
		fmt.Fprintln(r.out, "already at the root, 'quit' to leave")
	}
	return nil
}

func (r *repl) cmdHistory(ctx context.Context, args []string) error {
	history := r.sess.Navigator.History()
	if len(history) == 0 {
		fmt.Fprintln(r.out, "no history")
		return nil
	}
	for i, p := range history {
		fmt.Fprintf(r.out, "  -%d  %s\n", i+1, p)
	}
	return nil
}

func (r *repl) cmdMode(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(r.out, r.sess.Navigator.Mode())
		return nil
	}
	var (
		mode     types.BrowsingMode
		tagIDs   []int64
		matchAll bool
	)
	switch strings.ToLower(args[0]) {
	case "normal":
		mode = types.ModeNormal
	case "folder":
		mode = types.ModeFolderSelect
	case "tags":
		mode = types.ModeTagFilter
		rest := args[1:]
		if len(rest) > 0 && (rest[0] == "all" || rest[0] == "any") {
			matchAll = rest[0] == "all"
			rest = rest[1:]
		}
		ids, err := parseIDs(rest)
		if err != nil {
			return err
		}
		tagIDs = ids
	default:
		m, ok := types.ParseBrowsingMode(args[0])
		if !ok {
			return usage(r.byName["mode"])
		}
		mode = m
	}
	snap, err := r.sess.SetMode(ctx, mode, tagIDs, matchAll)
	r.show(snap)
	return err
}

func (r *repl) cmdSelect(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage(r.byName["select"])
	}
	if !r.sess.MultiSelect() {
		r.sess.ToggleMultiSelect()
	}
	for _, arg := range args {
		e, err := r.entry(arg)
		if err != nil {
			return err
		}
		r.sess.Toggle(e)
	}
	fmt.Fprintf(r.out, "%d selected\n", len(r.sess.Selection()))
	return nil
}

func (r *repl) cmdMulti(ctx context.Context, args []string) error {
	if r.sess.ToggleMultiSelect() {
		fmt.Fprintln(r.out, "multi-select on")
	} else {
		fmt.Fprintln(r.out, "multi-select off")
	}
	return nil
}

func (r *repl) cmdAll(ctx context.Context, args []string) error {
	if !r.sess.MultiSelect() {
		r.sess.ToggleMultiSelect()
	}
	r.sess.ToggleSelectAll()
	fmt.Fprintf(r.out, "%d selected\n", len(r.sess.Selection()))
	return nil
}

func (r *repl) scope() session.SearchScope {
	if r.searchView {
		return session.ScopeRemote
	}
	return session.ScopeLocal
}

func (r *repl) cmdMenu(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage(r.byName["menu"])
	}
	e, err := r.entry(args[0])
	if err != nil {
		return err
	}
	renderMenu(r.out, e, r.sess.BuildActionMenu(e, r.searchView, r.scope()), r.color)
	return nil
}

func (r *repl) cmdDo(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage(r.byName["do"])
	}
	e, err := r.entry(args[0])
	if err != nil {
		return err
	}
	id := args[1]
	if n, err := strconv.Atoi(id); err == nil {
		menu := r.sess.BuildActionMenu(e, r.searchView, r.scope())
		if n < 1 || n > len(menu) {
			return &types.ValidationError{Field: "action", Message: fmt.Sprintf("no action %d for %s", n, e.Name)}
		}
		id = menu[n-1].ID
	}
	outcome, err := r.sess.Dispatch(ctx, id, e)
	if err != nil {
		return err
	}
	return r.handleOutcome(ctx, outcome)
}

func (r *repl) cmdForm(ctx context.Context, args []string) error {
	if len(args) == 1 && args[0] == "cancel" {
		r.sess.CancelParameters()
		fmt.Fprintln(r.out, "form cancelled")
		return nil
	}
	pending := r.sess.PendingParameters()
	if pending == nil {
		return &types.ValidationError{Message: "no operation is waiting for parameters"}
	}
	if len(args) == 0 {
		renderForm(r.out, pending)
		return nil
	}
	values, err := parseAssignments(args)
	if err != nil {
		return err
	}
	outcome, err := r.sess.SubmitParameters(ctx, values)
	if err != nil {
		return err
	}
	return r.handleOutcome(ctx, outcome)
}

func (r *repl) handleOutcome(ctx context.Context, outcome session.Outcome) error {
	switch outcome.Kind {
	case session.OutcomeCancelled:
		fmt.Fprintln(r.out, "cancelled")
	case session.OutcomeExecuted:
		fmt.Fprintln(r.out, outcome.Result)
		r.show(r.sess.Listing.Snapshot())
	case session.OutcomeNavigated:
		r.show(r.sess.Listing.Snapshot())
	case session.OutcomeParamForm:
		renderForm(r.out, outcome.Form)
	case session.OutcomeMultiSelect:
		if outcome.MultiSelect {
			fmt.Fprintln(r.out, "multi-select on")
		} else {
			fmt.Fprintln(r.out, "multi-select off")
		}
	case session.OutcomeDownload:
		return r.download(ctx, outcome.URL, outcome.Entry.Name)
	case session.OutcomeEditor:
		return r.editBuffer(ctx, outcome.Editor)
	case session.OutcomeTagManager:
		return r.showFileTags(ctx, outcome.Entry)
	}
	return nil
}

func (r *repl) cmdSearch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		r.sess.ClearSearch()
		r.show(r.sess.Listing.Snapshot())
		return nil
	}
	page := 1
	keyword := strings.Join(args, " ")
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[len(args)-1]); err == nil {
			page = n
			keyword = strings.Join(args[:len(args)-1], " ")
		}
	}
	results, err := r.sess.RemoteSearch(ctx, keyword, page)
	if err != nil {
		return err
	}
	r.view = results.Entries
	r.searchView = true
	renderEntries(r.out, results.Entries, r.sess.IsSelected, r.color)
	status := fmt.Sprintf("%d of %d for %q", len(results.Entries), results.Total, results.Keyword)
	if results.HasMore {
		status += fmt.Sprintf(", 'search %s %d' for more", results.Keyword, results.Page+1)
	}
	fmt.Fprintln(r.out, status)
	return nil
}

func (r *repl) cmdFilter(ctx context.Context, args []string) error {
	if len(args) == 0 {
		r.show(r.sess.Listing.Snapshot())
		return nil
	}
	entries, err := r.sess.Filter(strings.Join(args, " "))
	if err != nil {
		return err
	}
	r.showEntries(entries)
	return nil
}

func (r *repl) cmdSort(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return usage(r.byName["sort"])
	}
	field, ok := session.ParseSortField(args[0])
	if !ok {
		return usage(r.byName["sort"])
	}
	desc := len(args) == 2 && strings.EqualFold(args[1], "desc")
	r.showEntries(r.sess.Sorted(field, desc))
	return nil
}

func (r *repl) cmdMkdir(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage(r.byName["mkdir"])
	}
	p, err := r.sess.CreateFolder(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "created %s\n", p)
	r.show(r.sess.Listing.Snapshot())
	return nil
}

func (r *repl) cmdPut(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage(r.byName["put"])
	}
	local := strings.Join(args, " ")
	info, err := os.Stat(local)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", local, err)
	}

	if info.IsDir() {
		report, err := r.sess.UploadDirectory(ctx, local)
		fmt.Fprintf(r.out, "%s: %d folders, %d files, %s\n",
			report.Root, report.Folders, report.Files, operations.FormatSize(report.Bytes))
		r.show(r.sess.Listing.Snapshot())
		return err
	}

	f, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", local, err)
	}
	defer f.Close()

	events, err := r.sess.Upload(ctx, f, filepath.Base(local), info.Size())
	if err != nil {
		return err
	}
	var last session.UploadEvent
	for ev := range events {
		last = ev
		fmt.Fprintf(r.out, "\r%s", progressBar(ev, 30))
	}
	fmt.Fprintln(r.out)
	if last.Err != nil {
		return last.Err
	}
	r.show(r.sess.Listing.Snapshot())
	return nil
}

func (r *repl) cmdGet(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return usage(r.byName["get"])
	}
	e, err := r.entry(args[0])
	if err != nil {
		return err
	}
	url, err := r.sess.DownloadURL(e)
	if err != nil {
		return err
	}
	dest := e.Name
	if len(args) == 2 {
		dest = args[1]
	}
	return r.download(ctx, url, dest)
}

func (r *repl) download(ctx context.Context, url, dest string) error {
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		return &types.ValidationError{Field: "dest", Message: dest + " is a directory"}
	}
	n, err := r.api.DownloadTo(ctx, url, dest)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "saved %s (%s)\n", dest, operations.FormatSize(n))
	return nil
}

func (r *repl) cmdCat(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage(r.byName["cat"])
	}
	e, err := r.entry(args[0])
	if err != nil {
		return err
	}
	ed, err := r.sess.OpenEditor(ctx, e)
	if err != nil {
		return err
	}
	content := ed.Content()
	fmt.Fprint(r.out, content)
	if !strings.HasSuffix(content, "\n") {
		fmt.Fprintln(r.out)
	}
	return nil
}

func (r *repl) cmdEdit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage(r.byName["edit"])
	}
	e, err := r.entry(args[0])
	if err != nil {
		return err
	}
	outcome, err := r.sess.Dispatch(ctx, session.ActionEdit, e)
	if err != nil {
		return err
	}
	return r.handleOutcome(ctx, outcome)
}

// editBuffer replaces the buffer with lines typed up to a lone ".". A
// lone "!" abandons the edit.
func (r *repl) editBuffer(ctx context.Context, ed *session.Editor) error {
	fmt.Fprintf(r.out, "%s, current content:\n", ed.Entry.Path)
	if ed.Lossy {
		fmt.Fprintln(r.out, "warning: the file is not valid UTF-8 on the server, saving replaces the undecodable bytes")
	}
	fmt.Fprintln(r.out, ed.Content())
	fmt.Fprintln(r.out, "enter the new content, end with a line containing only '.', or '!' to abandon")

	var b strings.Builder
	for {
		line, err := r.lines.ReadLine(ctx, "")
		if err != nil {
			return err
		}
		if line == "!" {
			fmt.Fprintln(r.out, "edit abandoned")
			return nil
		}
		if line == "." {
			break
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	ed.SetContent(b.String())
	if !ed.Dirty() {
		fmt.Fprintln(r.out, "no changes")
		return nil
	}
	if err := ed.Save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "saved %s\n", ed.Entry.Path)
	return nil
}

func (r *repl) cmdOps(ctx context.Context, args []string) error {
	if (len(args) == 1 && args[0] == "reload") || !r.sess.Catalogue.Loaded() {
		if _, err := r.sess.Catalogue.Load(ctx); err != nil {
			return err
		}
	}
	renderOperations(r.out, r.sess.Catalogue.Operations())
	return nil
}

func (r *repl) cmdTasks(ctx context.Context, args []string) error {
	tasks, err := r.api.RunningTasks(ctx)
	if err != nil {
		return err
	}
	renderTasks(r.out, tasks)
	return nil
}

func (r *repl) cmdCancelTask(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage(r.byName["cancel-task"])
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return usage(r.byName["cancel-task"])
	}
	if err := r.api.CancelTask(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "task %d cancelled\n", id)
	return nil
}

func (r *repl) cmdTags(ctx context.Context, args []string) error {
	if len(args) == 0 {
		tags, err := r.api.Tags(ctx)
		if err != nil {
			return err
		}
		if len(tags) == 0 {
			fmt.Fprintln(r.out, "no tags")
			return nil
		}
		renderTags(r.out, tags, 0)
		return nil
	}
	e, err := r.entry(args[0])
	if err != nil {
		return err
	}
	if len(args) == 1 {
		return r.showFileTags(ctx, e)
	}

	var ids []int64
	if !(len(args) == 2 && args[1] == "clear") {
		if ids, err = parseIDs(args[1:]); err != nil {
			return err
		}
	}
	if err := r.api.UpdateFileTags(ctx, e.Path, types.FileTags{TagIDs: ids}); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "tags of %s updated\n", e.Name)
	return r.showFileTags(ctx, e)
}

func (r *repl) showFileTags(ctx context.Context, e types.Entry) error {
	tags, err := r.api.FileTags(ctx, e.Path)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		fmt.Fprintf(r.out, "%s has no tags, set them with 'tags <n> <ids...>'\n", e.Name)
		return nil
	}
	fmt.Fprintf(r.out, "%s:\n", e.Path)
	renderTags(r.out, tags, 1)
	return nil
}

func (r *repl) cmdChown(ctx context.Context, args []string) error {
	if len(args) == 1 || len(args) > 2 {
		return usage(r.byName["chown"])
	}
	users, err := r.api.SystemUsers(ctx)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		if len(users) == 0 {
			fmt.Fprintln(r.out, "no accounts reported by the server")
			return nil
		}
		for _, u := range users {
			fmt.Fprintf(r.out, "  %s\n", u)
		}
		return nil
	}

	e, err := r.entry(args[0])
	if err != nil {
		return err
	}
	owner := args[1]
	if len(users) > 0 && !slices.Contains(users, owner) {
		return &types.ValidationError{Field: "owner", Message: fmt.Sprintf("unknown account %q, see 'chown'", owner)}
	}
	confirm := &terminalConfirmer{lines: r.lines, out: r.out}
	ok, err := confirm.Confirm(ctx, "Change Owner", "new owner: "+owner, []string{e.Path})
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(r.out, "owner unchanged")
		return nil
	}
	if err := r.api.ChangeOwner(ctx, e.Path, owner); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%s now belongs to %s\n", e.Name, owner)
	snap, err := r.sess.Refresh(ctx)
	if err != nil {
		return err
	}
	r.show(snap)
	return nil
}

func (r *repl) cmdLogin(ctx context.Context, args []string) error {
	username := r.username
	if len(args) > 0 {
		username = args[0]
	}
	if username == "" {
		u, err := r.lines.ReadLine(ctx, "username: ")
		if err != nil {
			return err
		}
		username = strings.TrimSpace(u)
	}
	password, err := readPassword(ctx, r.lines, r.out, "password: ")
	if err != nil {
		return err
	}

	token, err := r.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	r.username = username
	if err := r.tokens.SetString(keyToken, token); err != nil {
		r.logger.Warn("token not persisted", zap.Error(err))
	}
	fmt.Fprintf(r.out, "signed in as %s\n", username)

	var result *multierror.Error
	if _, err := r.sess.Catalogue.Load(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	snap, err := r.sess.Refresh(ctx)
	if err != nil {
		result = multierror.Append(result, err)
	}
	r.show(snap)
	return result.ErrorOrNil()
}

func (r *repl) cmdHelp(ctx context.Context, args []string) error {
	tw := newTable(r.out)
	for _, c := range r.commands {
		fmt.Fprintf(tw, "  %s\t%s\n", c.usage, c.help)
	}
	return tw.Flush()
}

// parseAssignments turns key=value arguments into form values. A value
// may be quoted to keep its spaces out of the argument split; arguments
// without '=' continue the previous value.
func parseAssignments(args []string) (map[string]any, error) {
	values := make(map[string]any, len(args))
	last := ""
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			if last == "" {
				return nil, &types.ValidationError{Field: "form", Message: fmt.Sprintf("expected key=value, got %q", arg)}
			}
			values[last] = values[last].(string) + " " + arg
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, &types.ValidationError{Field: "form", Message: fmt.Sprintf("missing key in %q", arg)}
		}
		values[key] = value
		last = key
	}
	for k, v := range values {
		values[k] = strings.Trim(v.(string), `"'`)
	}
	return values, nil
}

func parseIDs(args []string) ([]int64, error) {
	var ids []int64
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, &types.ValidationError{Field: "tags", Message: fmt.Sprintf("%q is not a tag id", part)}
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
