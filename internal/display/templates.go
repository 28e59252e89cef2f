package display

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// templateFuncs provides utility functions for message templates.
var templateFuncs = sprig.TxtFuncMap()

// ExpandTemplate expands a template string using the provided data. The data
// can be any struct - templates access fields via {{ .FieldName }}.
func ExpandTemplate(tmplStr string, data any) (string, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}

const (
	searchStartSelfTemplate  = `You begin searching {{ .RoomName }}...`
	searchStartOtherTemplate = `{{ .PlayerName }} begins rummaging around the room.`
	battleEndTemplate        = `{{ if .Winner }}{{ .Winner }} stands victorious{{ if .Weapon }}, {{ .Weapon }} in hand{{ end }}.{{ else }}The fight dissolves before a blow lands.{{ end }}{{ if .Killed }} {{ .Killed }} {{ if gt .KilledCount 1 }}lie{{ else }}lies{{ end }} dead.{{ end }}{{ if .Escaped }} {{ .Escaped }} fled the scene.{{ end }}`
	graceTemplate            = `{{ if .Active }}Grace period: {{ .Seconds }}s until attacks are allowed.{{ else }}The grace period is over. Fight!{{ end }}`
)

type searchStartData struct {
	RoomName   string
	PlayerName string
}

// SearchStartMessage renders the room-facing text for a search announcement.
func SearchStartMessage(roomName, playerName string, isYou bool) string {
	tmpl := searchStartOtherTemplate
	if isYou {
		tmpl = searchStartSelfTemplate
	}
	msg, err := ExpandTemplate(tmpl, searchStartData{RoomName: roomName, PlayerName: playerName})
	if err != nil {
		return ""
	}
	return msg
}

type battleEndData struct {
	Winner      string
	Weapon      string
	Killed      string
	KilledCount int
	Escaped     string
}

// BattleEndDescription narrates a battle resolution.
func BattleEndDescription(winner, weapon string, killed, escaped []string) string {
	msg, err := ExpandTemplate(battleEndTemplate, battleEndData{
		Winner:      winner,
		Weapon:      weapon,
		Killed:      JoinNames(killed),
		KilledCount: len(killed),
		Escaped:     JoinNames(escaped),
	})
	if err != nil {
		return ""
	}
	return msg
}

type graceData struct {
	Active  bool
	Seconds int64
}

// GraceMessage renders the grace-period countdown text.
func GraceMessage(active bool, seconds int64) string {
	msg, err := ExpandTemplate(graceTemplate, graceData{Active: active, Seconds: seconds})
	if err != nil {
		return ""
	}
	return msg
}
