package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"nathanbeddoewebdev/dnsctl/internal/tui/styles"
)

// Table renders rows under headers with the shared table styles.
// statusCol, when not negative, colours that column by StatusStyle.
func Table(headers []string, rows [][]string, statusCol int) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.TableBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.TableHeader
			}
			if col == statusCol && row >= 0 && row < len(rows) {
				return styles.StatusStyle(rows[row][col]).Padding(0, 1)
			}
			return styles.TableCell
		})
	return t.String()
}
