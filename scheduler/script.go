package scheduler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"al.essio.dev/pkg/shellescape"
)

var scriptTemplate = template.Must(template.New("script").
	Funcs(template.FuncMap{"quote": shellescape.Quote}).
	Parse(`#!/bin/bash

#COBALT --user_list {{ .UserList }}
{{- if gt .ProcCount 1 }}
#COBALT --proccount {{ .ProcCount }}
{{- end }}
{{- if .Cwd }}
#COBALT --cwd {{ .Cwd }}
{{- end }}
{{- if .Stderr }}
#COBALT --error {{ .Stderr }}
{{- end }}
{{- if .Stdout }}
#COBALT --output {{ .Stdout }}
{{- end }}
{{- if .OutputPrefix }}
#COBALT --outputprefix {{ .OutputPrefix }}
{{- end }}
{{- if .Project }}
#COBALT --run_project {{ .Project }}
{{- end }}
{{- if .Attrs }}
#COBALT --attrs {{ .Attrs }}
{{- end }}
{{- if .Dependencies }}
#COBALT --dependencies {{ .Dependencies }}
{{- end }}
{{- if .Geometry }}
#COBALT --geometry {{ .Geometry }}
{{- end }}
{{- if .Env }}
#COBALT --env {{ .Env }}
{{- end }}
{{- if .Hold }}
#COBALT --held
{{- end }}
{{- if .InputFile }}
#COBALT --input_file {{ .InputFile }}
{{- end }}
{{- if .Email }}
#COBALT --notify {{ .Email }}
{{- end }}
{{- if .Umask }}
#COBALT --umask {{ .Umask }}
{{- end }}

{{ if .Cwd }}cd {{ quote .Cwd }}
{{ end }}{{ .Command }}
`))

// scriptView holds the request options already joined the way Cobalt
// expects them in #COBALT directives.
type scriptView struct {
	UserList     string
	ProcCount    int
	Cwd          string
	Stderr       string
	Stdout       string
	OutputPrefix string
	Project      string
	Attrs        string
	Dependencies string
	Geometry     string
	Env          string
	Hold         bool
	InputFile    string
	Email        string
	Umask        string
	Command      string
}

// RenderScript writes the submission script for req. users is the resolved
// user list; it must not be empty.
func RenderScript(req *SubmitRequest, users []string) (string, error) {
	deps := make([]string, 0, len(req.Dependencies))
	for _, d := range req.Dependencies {
		deps = append(deps, strconv.Itoa(d))
	}
	view := scriptView{
		UserList:     strings.Join(users, ":"),
		ProcCount:    req.ProcCount,
		Cwd:          req.Cwd,
		Stderr:       req.Stderr,
		Stdout:       req.Stdout,
		OutputPrefix: req.OutputPrefix,
		Project:      strings.Join(req.Project, ":"),
		Attrs:        joinSorted(req.Attrs),
		Dependencies: strings.Join(deps, ":"),
		Geometry:     strings.Join(req.Geometry, "x"),
		Env:          joinSorted(req.Env),
		Hold:         req.Hold,
		InputFile:    req.InputFile,
		Email:        req.Email,
		Umask:        req.Umask,
		Command:      req.Command,
	}

	var b strings.Builder
	if err := scriptTemplate.Execute(&b, view); err != nil {
		return "", fmt.Errorf("failed to render script: %w", err)
	}
	return b.String(), nil
}

// joinSorted prints m as k=v pairs separated by ':', sorted by key.
func joinSorted(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+m[k])
	}
	return strings.Join(pairs, ":")
}
