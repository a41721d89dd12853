// Package templates holds the templ components for the review pages.
// Edit the .templ sources and regenerate with `templ generate`.
package templates

import (
	"strconv"
	"strings"

	"github.com/JonMunkholm/tallyreview/internal/core"
)

// PresetGroup is one section of the preset list on the landing page.
type PresetGroup struct {
	Name    string
	Presets []core.Preset
}

func uploadAccept() string {
	return strings.Join(core.UploadExtensions, ",")
}

func ruleCount(p core.Preset) string {
	return strconv.Itoa(len(p.Rules)) + " rules"
}

func sessionLink(fileID, suffix string) string {
	return "/api/sessions/" + fileID + suffix
}

func tableColumns(snap core.Snapshot) []string {
	if snap.Table == nil {
		return nil
	}
	return snap.Table.Columns()
}

func tableRows(snap core.Snapshot) []core.TableRow {
	if snap.Table == nil {
		return nil
	}
	return snap.Table.Rows
}

func cellClass(cell core.TableCell, issues []core.ValidationError) string {
	class := "status-" + string(cell.Metadata.Status)
	if len(issues) > 0 {
		class += " invalid"
	}
	return class
}

func issueText(issues []core.ValidationError) string {
	msgs := make([]string, len(issues))
	for i, v := range issues {
		msgs[i] = v.Message
	}
	return strings.Join(msgs, "; ")
}
