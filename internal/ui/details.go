package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"geosearch/internal/domain"
	"geosearch/internal/ui/views"
)

// LocationJSON returns the location as indented JSON, preferring the entry
// exactly as the geocoder sent it.
func LocationJSON(loc *domain.Location) (string, error) {
	if loc == nil {
		return "null", nil
	}
	if len(loc.Raw) > 0 {
		var buf bytes.Buffer
		if err := json.Indent(&buf, loc.Raw, "", "  "); err == nil {
			return buf.String(), nil
		}
	}
	data, err := json.MarshalIndent(loc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode location: %w", err)
	}
	return string(data), nil
}

// renderDetails draws the summary panel for the selected location.
func renderDetails(styles *views.Styles, loc *domain.Location, width int) string {
	if loc == nil {
		return styles.Details.Render(styles.Dim.Render("No location selected"))
	}

	row := func(label, value string) string {
		if value == "" {
			return ""
		}
		return styles.Label.Render(fmt.Sprintf("%-13s", label)) + value
	}

	kind := loc.Kind()
	if loc.Type != "" {
		kind = strings.TrimPrefix(kind+"/"+loc.Type, "/")
	}
	osm := ""
	if loc.OSMType != "" {
		osm = fmt.Sprintf("%s %d", loc.OSMType, loc.OSMID)
	}

	var lines []string
	for _, l := range []string{
		row("Name", loc.Label()),
		row("Coordinates", strings.Trim(loc.Lat+", "+loc.Lon, ", ")),
		row("Kind", kind),
		row("OSM", osm),
	} {
		if l != "" {
			lines = append(lines, l)
		}
	}

	style := styles.Details
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
