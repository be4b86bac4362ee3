package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/GriffinCanCode/FileFlex/client/internal/domain/listing"
	"github.com/GriffinCanCode/FileFlex/client/internal/domain/operations"
	"github.com/GriffinCanCode/FileFlex/client/internal/domain/session"
	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

const (
	colorBlue  = "\033[1;34m"
	colorRed   = "\033[1;31m"
	colorReset = "\033[0m"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func formatTime(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return time.UnixMilli(ms).Format("2006-01-02 15:04:05")
}

func renderEntries(w io.Writer, entries []types.Entry, selected func(string) bool, color bool) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "(empty)")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "#\t\tName\tKind\tSize\tModified\tOwner")
	for i, e := range entries {
		mark := " "
		if selected != nil && selected(e.Path) {
			mark = "*"
		}
		name := e.Name
		size := operations.FormatSize(e.Size)
		if e.IsDirectory {
			name += "/"
			size = "-"
			if color {
				name = colorBlue + name + colorReset
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, mark, name, operations.Classify(e), size, formatTime(e.LastModified), e.Owner)
	}
	tw.Flush()
}

func renderSnapshot(w io.Writer, snap listing.Snapshot, selected func(string) bool, color bool) {
	q := snap.Query
	switch q.Mode {
	case types.ModeTagFilter:
		match := "any"
		if q.MatchAll {
			match = "all"
		}
		fmt.Fprintf(w, "tags %v (%s)\n", q.TagIDs, match)
	default:
		fmt.Fprintf(w, "%s  [%s]\n", q.Path, strings.ToLower(string(q.Mode)))
	}
	renderEntries(w, snap.Entries, selected, color)

	status := fmt.Sprintf("%d of %d", len(snap.Entries), snap.TotalCount)
	if snap.HasMore {
		status += ", 'more' for the next page"
	}
	fmt.Fprintln(w, status)
}

func renderMenu(w io.Writer, entry types.Entry, menu []session.Action, color bool) {
	fmt.Fprintf(w, "%s\n", entry.Path)
	for i, a := range menu {
		label := a.Label
		if a.Danger {
			label += " (!)"
			if color {
				label = colorRed + label + colorReset
			}
		}
		fmt.Fprintf(w, "  %d. %s  [%s]\n", i+1, label, a.ID)
	}
}

func renderForm(w io.Writer, form *session.PendingForm) {
	d := form.Descriptor
	fmt.Fprintf(w, "%s needs parameters. Submit with: form key=value ...\n", describe(d))
	tw := newTable(w)
	fmt.Fprintln(tw, "  Key\tLabel\tType\tRequired\tDefault")
	for _, p := range d.ParamSchema {
		if p.Key == d.PathKey() {
			continue
		}
		def := "-"
		if v, ok := form.Defaults[p.Key]; ok {
			def = fmt.Sprint(v)
		}
		typ := string(p.Kind())
		if len(p.Options) > 0 {
			values := make([]string, len(p.Options))
			for i, o := range p.Options {
				values[i] = fmt.Sprint(o.Value)
			}
			typ += " (" + strings.Join(values, "|") + ")"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%t\t%s\n", p.Key, p.Label, typ, p.Required, def)
	}
	tw.Flush()
}

func describe(d types.OperationDescriptor) string {
	if d.Description != "" {
		return d.Description
	}
	return d.Type
}

func renderOperations(w io.Writer, ops []types.OperationDescriptor) {
	tw := newTable(w)
	fmt.Fprintln(tw, "Type\tDescription\tTargets\tExtensions\tMulti\tTask")
	for _, d := range ops {
		var targets []string
		if d.SupportsFile {
			targets = append(targets, "file")
		}
		if d.SupportsDirectory {
			targets = append(targets, "dir")
		}
		exts := "any"
		if !d.AcceptsAnyExtension() {
			exts = strings.Join(d.SupportedExtensions, ",")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%t\n",
			d.Type, d.Description, strings.Join(targets, "+"), exts, d.SupportsMultiSelect, d.IsAsyncTask)
	}
	tw.Flush()
}

func renderTasks(w io.Writer, tasks []types.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "no running tasks")
		return
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tType\tStatus\tProgress\tStarted\tMessage")
	for _, t := range tasks {
		typ := t.TypeDesc
		if typ == "" {
			typ = t.Type
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d%%\t%s\t%s\n",
			t.ID, typ, t.Status, t.Progress, formatTime(t.BeginTime), t.Message)
	}
	tw.Flush()
}

func renderTags(w io.Writer, tags []types.Tag, depth int) {
	for _, t := range tags {
		quick := ""
		if t.QuickAccess {
			quick = " *"
		}
		fmt.Fprintf(w, "%s%d %s (%d)%s\n", strings.Repeat("  ", depth), t.ID, t.Name, t.FileCount, quick)
		renderTags(w, t.Children, depth+1)
	}
}

func progressBar(ev session.UploadEvent, width int) string {
	filled := ev.Percent * width / 100
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %3d%% %s",
		strings.Repeat("#", filled), strings.Repeat(".", width-filled),
		ev.Percent, operations.FormatSize(ev.Sent))
}
