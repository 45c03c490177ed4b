package generator

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

const header = "// Code generated by modelgen. DO NOT EDIT.\n"

// builtinTemplates holds the named output templates. Each template is a
// pure function of its context map; identical input always renders
// identical bytes, which is what lets the file manager detect "no real
// change" on regeneration.
var builtinTemplates = map[string]string{
	"datatype": header + `// Source table: {{.Table}}
{{- range .Imports}}
import type { {{join .Types ", "}} } from '{{.File}}';
{{- end}}
{{- range .Docs}}
// {{.}}
{{- end}}

export interface {{.TypeName}} {
{{- range .Columns}}
  {{.Name}}: {{.Type}};{{if .Comment}} // {{.Comment}}{{end}}
{{- end}}
{{- range .Relationships}}
  {{.Name}}?: {{.Type}};{{if .Doc}} // {{.Doc}}{{end}}
{{- end}}
}

{{if .Exclusions}}export type {{.ModelName}}CreateData = Omit<{{.TypeName}}, {{union .Exclusions}}>;
{{else}}export type {{.ModelName}}CreateData = {{.TypeName}};
{{end}}export type {{.ModelName}}UpdateData = Partial<{{.ModelName}}CreateData>;
`,

	"active": header + `
import { ActiveRecord } from '../lib/active-record';
import type { {{.TypeName}}, {{.ModelName}}CreateData, {{.ModelName}}UpdateData } from './{{.KebabName}}';

export class {{.ModelName}} extends ActiveRecord<{{.TypeName}}, {{.ModelName}}CreateData, {{.ModelName}}UpdateData> {
  static tableName = '{{.Table}}';
  static modelName = '{{.ModelName}}';
{{- if .Loggable}}
  static loggable = true;
{{- end}}
{{- if .SoftDelete}}
  static softDelete = { column: '{{.SoftDelete}}' };
{{- end}}
{{- if .Position}}
  static positioned = { column: '{{.Position}}' };
{{- end}}
{{- if .Defaults}}
  static defaults: Partial<{{.ModelName}}CreateData> = {
{{- range .Defaults}}
    {{.Name}}: {{.Literal}},
{{- end}}
  };
{{- end}}
}
{{- if .Registrations}}

{{.ModelName}}.registerRelationships({
{{- range .Registrations}}
  {{.Name}}: { kind: '{{.Kind}}'{{if .Polymorphic}}, polymorphic: true, typeField: '{{.TypeField}}', idField: '{{.IDField}}'{{else}}{{if .Model}}, model: '{{.Model}}'{{end}}{{if .ForeignKey}}, foreignKey: '{{.ForeignKey}}'{{end}}{{if .Through}}, through: '{{.Through}}'{{end}}{{end}} },
{{- end}}
});
{{- end}}
{{- if .Polymorphics}}

{{.ModelName}}.registerPolymorphic({
{{- range .Polymorphics}}
  {{.Name}}: { typeField: '{{.TypeField}}', idField: '{{.IDField}}', allowedTypes: [{{list .AllowedTypes}}] },
{{- end}}
});
{{- end}}
`,

	"reactive": header + `
import { ReactiveRecord } from '../lib/reactive-record';
import type { {{.TypeName}} } from './{{.KebabName}}';

export class {{.ReactiveName}} extends ReactiveRecord<{{.TypeName}}> {
  static tableName = '{{.Table}}';
  static modelName = '{{.ModelName}}';
}
`,

	"index": header + `
{{range .Models -}}
export * from './{{.Kebab}}';
export { {{.Model}} } from './{{.Kebab}}-active';
export { {{.Reactive}} } from './{{.Kebab}}-reactive';
{{end -}}
`,

	"loggable": header + `
export const loggableModels = [
{{- range .Models}}
  { model: '{{.Model}}', table: '{{.Table}}' },
{{- end}}
] as const;
`,
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	// union renders Omit members: 'id' | 'jobs'
	"union": func(names []string) string {
		quoted := make([]string, len(names))
		for i, n := range names {
			quoted[i] = "'" + n + "'"
		}
		return strings.Join(quoted, " | ")
	},
	// list renders array members: 'Client', 'Job'
	"list": func(names []string) string {
		quoted := make([]string, len(names))
		for i, n := range names {
			quoted[i] = "'" + n + "'"
		}
		return strings.Join(quoted, ", ")
	},
}

// Renderer renders named templates against context maps. Parsed templates
// are cached for the life of the process; the cache is safe for concurrent
// per-table rendering.
type Renderer struct {
	mu    sync.RWMutex
	texts map[string]string
	cache map[string]*template.Template
}

func NewRenderer() *Renderer {
	return NewRendererWithTemplates(builtinTemplates)
}

// NewRendererWithTemplates builds a renderer over an explicit template set.
// Tests use it to inject broken templates.
func NewRendererWithTemplates(texts map[string]string) *Renderer {
	return &Renderer{texts: texts, cache: map[string]*template.Template{}}
}

// Render executes the named template. A missing template or an undefined
// reference inside one is an error for the caller's table, never a panic.
func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	tmpl, err := r.lookup(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering template %q: %v", name, err)
	}
	return buf.String(), nil
}

func (r *Renderer) lookup(name string) (*template.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.cache[name]; ok {
		return tmpl, nil
	}

	text, ok := r.texts[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", name)
	}
	tmpl, err := template.New(name).Funcs(templateFuncs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template %q: %v", name, err)
	}
	r.cache[name] = tmpl
	return tmpl, nil
}
