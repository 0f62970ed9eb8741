package render

import (
	"strings"

	"go.uber.org/zap"

	"github.com/jaanus110/haagissuvilarent/internal/component"
	"github.com/jaanus110/haagissuvilarent/internal/i18n"
	"github.com/jaanus110/haagissuvilarent/internal/observability"
)

// MaxDepth bounds nested component expansion.
const MaxDepth = 8

// Fragments supplies component fragments by marker name.
type Fragments interface {
	Fragment(name string) (component.Fragment, bool)
}

// Engine expands component markers and resolves tokens in a single pass.
type Engine struct {
	fragments Fragments
	logger    *zap.Logger
}

// NewEngine returns an engine reading fragments from f. f may be nil, in which
// case every marker expands to nothing.
func NewEngine(f Fragments, logger *zap.Logger) *Engine {
	return &Engine{fragments: f, logger: observability.OrNop(logger)}
}

// block is a template after component expansion: a flat node list where JSON
// fragments are kept as their own sub-blocks.
type block struct {
	nodes []Node
	json  *jsonBlock
}

type jsonBlock struct {
	name  string
	nodes []Node
}

// Render expands components in src and resolves every token through scope.
// Resolved values are written verbatim and never scanned again.
func (e *Engine) Render(src string, scope *i18n.Scope) string {
	blocks := e.expand(Tokenize(src), nil, scope)
	var b strings.Builder
	b.Grow(len(src))
	for _, blk := range blocks {
		if blk.json != nil {
			b.WriteString(e.renderJSON(blk.json, scope))
			continue
		}
		for _, n := range blk.nodes {
			switch n.Kind {
			case NodeToken:
				if n.Key != "" {
					b.WriteString(scope.Resolve(n.Key))
				}
			default:
				b.WriteString(n.Text)
			}
		}
	}
	return b.String()
}

func (e *Engine) expand(nodes []Node, stack []string, scope *i18n.Scope) []block {
	var (
		out     []block
		current []Node
	)
	flush := func() {
		if len(current) > 0 {
			out = append(out, block{nodes: current})
			current = nil
		}
	}

	for _, n := range nodes {
		if n.Kind != NodeComponent {
			current = append(current, n)
			continue
		}
		if contains(stack, n.Name) {
			e.warn(scope, "component cycle", zap.String("component", n.Name), zap.Strings("stack", stack))
			continue
		}
		if len(stack) >= MaxDepth {
			e.warn(scope, "component nesting too deep", zap.String("component", n.Name), zap.Int("max_depth", MaxDepth))
			continue
		}
		if e.fragments == nil {
			continue
		}
		frag, ok := e.fragments.Fragment(n.Name)
		if !ok {
			continue
		}
		if frag.Kind == component.KindJSON {
			flush()
			out = append(out, block{json: &jsonBlock{name: n.Name, nodes: Tokenize(frag.Body)}})
			continue
		}
		inner := e.expand(Tokenize(frag.Body), append(append([]string(nil), stack...), n.Name), scope)
		for _, blk := range inner {
			if blk.json != nil {
				flush()
				out = append(out, blk)
				continue
			}
			current = append(current, blk.nodes...)
		}
	}
	flush()
	return out
}

func (e *Engine) renderJSON(blk *jsonBlock, scope *i18n.Scope) string {
	var b strings.Builder
	for _, n := range blk.nodes {
		switch n.Kind {
		case NodeToken:
			if n.Key != "" {
				b.WriteString(component.EscapeJSON(scope.Plain(n.Key)))
			}
		default:
			b.WriteString(n.Text)
		}
	}
	out, err := component.Finalize(blk.name, b.String())
	if err != nil {
		e.warn(scope, "dropping structured data fragment", zap.String("component", blk.name), zap.Error(err))
		return ""
	}
	return out
}

func (e *Engine) warn(scope *i18n.Scope, msg string, fields ...zap.Field) {
	if scope != nil {
		fields = append(fields, zap.String("lang", scope.Lang()), zap.String("page", scope.Page()))
	}
	e.logger.Warn(msg, fields...)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
