package heimer

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/ghodss/yaml"
)

// Emitter renders a validated model as text in one output language.
type Emitter interface {
	Name() string
	Extensions() []string
	Emit(model *Model, conf *Data) (string, error)
}

var emitters = make(map[string]Emitter)

// RegisterEmitter makes an emitter available by name. Registering a name
// twice panics.
func RegisterEmitter(e Emitter) {
	name := e.Name()
	if _, ok := emitters[name]; ok {
		panic("heimer: emitter already registered: " + name)
	}
	emitters[name] = e
}

func FindEmitter(name string) Emitter {
	return emitters[name]
}

// EmitterForFile picks the emitter whose extensions include the extension of path.
func EmitterForFile(path string) Emitter {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil
	}
	for _, name := range EmitterNames() {
		e := emitters[name]
		for _, x := range e.Extensions() {
			if x == ext {
				return e
			}
		}
	}
	return nil
}

func EmitterNames() []string {
	names := make([]string, 0, len(emitters))
	for name := range emitters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type jsonEmitter struct{}

func (jsonEmitter) Name() string         { return "json" }
func (jsonEmitter) Extensions() []string { return []string{".json"} }

func (jsonEmitter) Emit(model *Model, conf *Data) (string, error) {
	return Pretty(model), nil
}

type yamlEmitter struct{}

func (yamlEmitter) Name() string         { return "yaml" }
func (yamlEmitter) Extensions() []string { return []string{".yaml", ".yml"} }

func (yamlEmitter) Emit(model *Model, conf *Data) (string, error) {
	b, err := yaml.JSONToYAML([]byte(Pretty(model)))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func init() {
	RegisterEmitter(jsonEmitter{})
	RegisterEmitter(yamlEmitter{})
}

//----------------

// Generator is the shared text-building state of an emitter.
type Generator struct {
	Config *Data
	OutDir string
	Err    error
	buf    bytes.Buffer
	writer *bufio.Writer
}

func (gen *Generator) GetConfigString(k string, defaultValue string) string {
	return gen.Config.GetStringDefault(k, defaultValue)
}

func (gen *Generator) Emit(s string) {
	if gen.Err == nil && gen.writer != nil {
		_, gen.Err = gen.writer.WriteString(s)
	}
}

func (gen *Generator) Emitf(format string, args ...interface{}) {
	gen.Emit(fmt.Sprintf(format, args...))
}

func (gen *Generator) Begin() {
	if gen.Err != nil {
		return
	}
	gen.buf.Reset()
	gen.writer = bufio.NewWriter(&gen.buf)
}

func (gen *Generator) End() string {
	if gen.Err != nil || gen.writer == nil {
		return ""
	}
	gen.writer.Flush()
	return gen.buf.String()
}

// WriteFile writes content to path, refusing to replace an existing file
// unless "force-overwrite" is configured.
func (gen *Generator) WriteFile(path string, content string) {
	if gen.Err != nil {
		return
	}
	if gen.OutDir != "" && !filepath.IsAbs(path) {
		if gen.Err = os.MkdirAll(gen.OutDir, 0755); gen.Err != nil {
			return
		}
		path = filepath.Join(gen.OutDir, path)
	}
	if !gen.Config.GetBool("force-overwrite") && gen.FileExists(path) {
		gen.Err = fmt.Errorf("%s already exists, not overwriting", path)
		return
	}
	f, err := os.Create(path)
	if err != nil {
		gen.Err = err
		return
	}
	defer f.Close()
	writer := bufio.NewWriter(f)
	if _, gen.Err = writer.WriteString(content); gen.Err == nil {
		gen.Err = writer.Flush()
	}
}

func (gen *Generator) EmitTemplate(name string, tmplSource string, data interface{}, funcMap template.FuncMap) {
	if gen.Err != nil {
		return
	}
	var b bytes.Buffer
	tmpl, err := template.New(name).Funcs(funcMap).Parse(tmplSource)
	if err != nil {
		gen.Err = err
		return
	}
	if err = tmpl.Execute(&b, data); err != nil {
		gen.Err = err
		return
	}
	gen.Emit(b.String())
}

func (gen *Generator) FileExists(path string) bool {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false
	}
	return true
}

func (gen *Generator) FormatComment(indent, prefix, comment string, maxcol int) string {
	return FormatComment(indent, prefix, comment, maxcol)
}

// FormatComment wraps comment into lines no wider than maxcol, each starting
// with indent and prefix.
func FormatComment(indent, prefix, comment string, maxcol int) string {
	var buf bytes.Buffer
	col := 0
	for _, tok := range strings.Fields(comment) {
		if col > 0 && col+len(tok)+1 > maxcol {
			buf.WriteString("\n")
			col = 0
		}
		if col == 0 {
			buf.WriteString(indent + prefix + tok)
			col = len(indent) + len(prefix) + len(tok)
		} else {
			buf.WriteString(" " + tok)
			col += len(tok) + 1
		}
	}
	buf.WriteString("\n")
	return buf.String()
}
