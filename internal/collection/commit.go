package collection

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"imagesieve/internal/fileutil"
)

// Method selects what a commit does with the files.
type Method string

const (
	// MethodCopy copies taken-over items into the destination tree.
	MethodCopy Method = "copy"
	// MethodMove moves taken-over items into the destination tree.
	MethodMove Method = "move"
	// MethodDelete moves taken-over items, then deletes the discarded ones.
	MethodDelete Method = "delete"
)

// ParseMethod validates a commit method string.
func ParseMethod(value string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(value))) {
	case MethodCopy:
		return MethodCopy, nil
	case MethodMove:
		return MethodMove, nil
	case MethodDelete:
		return MethodDelete, nil
	default:
		return "", fmt.Errorf("unknown commit method %q", value)
	}
}

// ReportKind tags entries on the commit progress stream.
type ReportKind int

const (
	// ReportProgress is a routine per-item status line.
	ReportProgress ReportKind = iota
	// ReportItemError marks a per-item failure; the commit continues.
	ReportItemError
	// ReportCompleted is the terminal entry, exactly one per commit.
	ReportCompleted
)

// Report is one entry on the commit progress stream. The tagged kind
// replaces sentinel message matching: receivers key off Kind, not text.
type Report struct {
	Kind    ReportKind
	Message string
}

// Summary totals a finished commit.
type Summary struct {
	Committed int
	Failed    int
	Deleted   int
	Message   string
}

// Commit applies the take-over decisions to the filesystem. It is called on
// a snapshot, so decisions changed after the commit starts do not affect the
// in-flight run. Per-item failures are reported and skipped; only an
// unusable destination root stops the commit early. The report callback is
// invoked from the calling goroutine for every progress entry and exactly
// once with ReportCompleted.
func (c *Collection) Commit(dest string, method Method, report func(Report)) Summary {
	if report == nil {
		report = func(Report) {}
	}

	if err := c.preflightDestination(dest, method); err != nil {
		summary := Summary{Message: fmt.Sprintf("Commit aborted: %v", err)}
		report(Report{Kind: ReportCompleted, Message: summary.Message})
		return summary
	}

	var summary Summary
	taken := 0
	for i := range c.Items {
		if c.Items[i].TakeOver {
			taken++
		}
	}

	done := 0
	for i := range c.Items {
		item := &c.Items[i]
		if !item.TakeOver {
			continue
		}
		done++

		target, err := c.targetPath(dest, item)
		if err == nil {
			switch method {
			case MethodCopy:
				err = fileutil.CopyFile(item.AbsPath(c.Root), target)
			default:
				err = fileutil.MoveFile(item.AbsPath(c.Root), target)
			}
		}
		if err != nil {
			summary.Failed++
			report(Report{
				Kind:    ReportItemError,
				Message: fmt.Sprintf("Failed %s: %v", item.Path, err),
			})
			continue
		}
		summary.Committed++
		report(Report{
			Kind:    ReportProgress,
			Message: fmt.Sprintf("%s %s (%d/%d)", pastTense(method), item.Path, done, taken),
		})
	}

	if method == MethodDelete {
		for i := range c.Items {
			item := &c.Items[i]
			if item.TakeOver {
				continue
			}
			if err := os.Remove(item.AbsPath(c.Root)); err != nil {
				summary.Failed++
				report(Report{
					Kind:    ReportItemError,
					Message: fmt.Sprintf("Failed to delete %s: %v", item.Path, err),
				})
				continue
			}
			summary.Deleted++
			report(Report{
				Kind:    ReportProgress,
				Message: fmt.Sprintf("Deleted %s", item.Path),
			})
		}
	}

	summary.Message = fmt.Sprintf("Done: %d committed, %d failed", summary.Committed, summary.Failed)
	if method == MethodDelete {
		summary.Message += fmt.Sprintf(", %d deleted", summary.Deleted)
	}
	report(Report{Kind: ReportCompleted, Message: summary.Message})
	return summary
}

// preflightDestination fails fast when the destination root is unusable:
// not creatable, not writable, or too small to hold the copied bytes.
func (c *Collection) preflightDestination(dest string, method Method) error {
	if strings.TrimSpace(dest) == "" {
		return fmt.Errorf("no destination directory configured")
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if !fileutil.Writable(dest) {
		return fmt.Errorf("destination %s is not writable", dest)
	}
	if method != MethodCopy {
		return nil
	}
	var needed uint64
	for i := range c.Items {
		if c.Items[i].TakeOver {
			needed += uint64(c.Items[i].Size)
		}
	}
	free, err := fileutil.FreeSpace(dest)
	if err != nil {
		// Space probe failure is not fatal; the copy itself will surface
		// a disk-full error per item.
		return nil
	}
	if free < needed {
		return fmt.Errorf("destination has %d bytes free, need %d", free, needed)
	}
	return nil
}

// targetPath places an item under its event folder when one matches, else
// under a year-month folder from its timestamp, probing numeric suffixes on
// collision.
func (c *Collection) targetPath(dest string, item *Item) (string, error) {
	folder := item.Timestamp.Format("2006-01")
	if event, ok := c.EventFor(item); ok {
		folder = event.Name
	}
	return fileutil.UniquePath(filepath.Join(dest, folder, item.Name()))
}

func pastTense(method Method) string {
	if method == MethodCopy {
		return "Copied"
	}
	return "Moved"
}
