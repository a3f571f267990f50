package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Makepad-fr/task-tracker/internal/model"
)

// DescriptionWidth is the longest description shown untruncated in tables.
const DescriptionWidth = 30

const (
	ellipsis   = "..."
	timeLayout = "2006-01-02 15:04"
)

// Truncate cuts s to width runes, replacing the tail with "..." when it
// does not fit. A 31-rune string at width 30 becomes 27 runes plus "...".
func Truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	keep := width - len(ellipsis)
	if keep < 0 {
		keep = 0
	}
	return string(r[:keep]) + ellipsis
}

// ListHeader names a listing: "All Tasks" or "<Status> Tasks".
func ListHeader(filter *model.Status) string {
	if filter == nil {
		return "All Tasks"
	}
	return filter.Label() + " Tasks"
}

// Tasks prints a table of tasks under header, or a "No tasks found" line.
func (p *Printer) Tasks(header string, tasks []model.Task) {
	t := p.theme
	if len(tasks) == 0 {
		fmt.Fprintf(p.out, "\n%s: %s\n", t.Title.Render(header), t.Muted.Render("No tasks found"))
		return
	}

	fmt.Fprintf(p.out, "\n%s\n", t.Title.Render(header))
	fmt.Fprintln(p.out, TaskTable(t, tasks))

	done := 0
	for _, task := range tasks {
		if task.Status == model.StatusDone {
			done++
		}
	}
	fmt.Fprintln(p.out, t.Muted.Render(fmt.Sprintf("%s  %d/%d done",
		ProgressBar(t, done, len(tasks), 20), done, len(tasks))))
}

// TaskTable renders tasks as a bordered table.
func TaskTable(t Theme, tasks []model.Task) string {
	rows := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, []string{
			strconv.Itoa(task.ID),
			task.Title,
			descriptionCell(task),
			t.StatusText(task.Status),
			task.CreatedAt.UTC().Format(timeLayout),
			task.UpdatedAt.UTC().Format(timeLayout),
		})
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(t.Border).
		BorderStyle(t.Muted).
		Headers("ID", "Title", "Description", "Status", "Created At", "Updated At").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return t.Accent.Padding(0, 1)
			}
			if col == 3 && row >= 0 && row < len(tasks) {
				return t.StatusStyle(tasks[row].Status).Padding(0, 1)
			}
			return cell
		}).
		String()
}

// Task prints one task's details in a panel.
func (p *Printer) Task(task model.Task) {
	p.Panel(TaskDetail(p.theme, task))
}

// TaskDetail lists every field of task, one per line.
func TaskDetail(t Theme, task model.Task) []string {
	desc := task.DescriptionText()
	if desc == "" {
		desc = t.Muted.Render("-")
	}
	label := func(s string) string { return t.Muted.Render(fmt.Sprintf("%-12s", s)) }
	return []string{
		t.Title.Render(fmt.Sprintf("#%d %s", task.ID, task.Title)),
		"",
		label("Description") + desc,
		label("Status") + t.StatusStyle(task.Status).Render(t.StatusText(task.Status)),
		label("Created At") + task.CreatedAt.UTC().Format(timeLayout),
		label("Updated At") + task.UpdatedAt.UTC().Format(timeLayout),
	}
}

func descriptionCell(task model.Task) string {
	if task.Description == nil {
		return "-"
	}
	return Truncate(*task.Description, DescriptionWidth)
}
