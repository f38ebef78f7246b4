// SPDX-License-Identifier: MPL-2.0

package emit

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/invowk/minipack/pkg/modgraph"
)

type (
	// Emitter turns module graphs into bundles. It holds no per-bundle state.
	Emitter struct {
		compactor Compactor
		policy    CachePolicy
		logger    *log.Logger
	}

	// Option configures an Emitter.
	Option func(*Emitter)
)

// WithCachePolicy selects the loader's require semantics. Invalid policies
// are ignored.
func WithCachePolicy(p CachePolicy) Option {
	return func(e *Emitter) {
		if p.Validate() == nil {
			e.policy = p
		}
	}
}

// WithLogger sets the logger used for emission tracing.
func WithLogger(logger *log.Logger) Option {
	return func(e *Emitter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEmitter creates an Emitter. A nil compactor behaves like Identity.
func NewEmitter(compactor Compactor, opts ...Option) *Emitter {
	if compactor == nil {
		compactor = Identity{}
	}
	e := &Emitter{
		compactor: compactor,
		policy:    DefaultCachePolicy,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CachePolicy reports the policy the emitted loader uses.
func (e *Emitter) CachePolicy() CachePolicy { return e.policy }

// Emit renders g and passes the result through the compactor.
func (e *Emitter) Emit(ctx context.Context, g *modgraph.Graph) (string, error) {
	text, err := e.Render(g)
	if err != nil {
		return "", err
	}
	out, err := e.compactor.Compact(ctx, text)
	if err != nil {
		return "", &CompactionError{Err: err}
	}
	e.logger.Debug("bundle compacted", "before", len(text), "after", len(out))
	return out, nil
}

// Render returns the uncompacted bundle for g. The output depends only on the
// graph and the cache policy.
func (e *Emitter) Render(g *modgraph.Graph) (string, error) {
	if g == nil || g.Len() == 0 {
		return "", ErrEmptyGraph
	}

	var sb strings.Builder
	e.writeLoader(&sb)

	sb.WriteString("})({\n")
	for _, mod := range g.Modules() {
		deps, err := mod.Dependencies.MarshalJSON()
		if err != nil {
			return "", fmt.Errorf("encode dependencies of module %d: %w", mod.ID, err)
		}
		sb.WriteString("  ")
		sb.WriteString(strconv.Itoa(mod.ID))
		sb.WriteString(": [\n    function (require, module, exports) {\n")
		sb.WriteString(mod.Code)
		if !strings.HasSuffix(mod.Code, "\n") {
			sb.WriteByte('\n')
		}
		sb.WriteString("    },\n    ")
		sb.Write(deps)
		sb.WriteString(",\n  ],\n")
	}
	sb.WriteString("});\n")

	e.logger.Debug("bundle rendered", "modules", g.Len(), "bytes", sb.Len(), "cache", e.policy)
	return sb.String(), nil
}

func (e *Emitter) writeLoader(sb *strings.Builder) {
	sb.WriteString("(function (modules) {\n")
	if e.policy == CacheExports {
		sb.WriteString("  var cache = {};\n")
	}
	sb.WriteString("  function require(id) {\n")
	if e.policy == CacheExports {
		sb.WriteString("    if (Object.prototype.hasOwnProperty.call(cache, id)) return cache[id].exports;\n")
	}
	sb.WriteString(`    var entry = modules[id];
    var fn = entry[0];
    var dependencies = entry[1];
    function localRequire(name) {
      if (!Object.prototype.hasOwnProperty.call(dependencies, name)) {
        throw new Error("Cannot find module '" + name + "'");
      }
      return require(dependencies[name]);
    }
    var module = { exports: {} };
`)
	if e.policy == CacheExports {
		sb.WriteString("    cache[id] = module;\n")
	}
	sb.WriteString(`    fn(localRequire, module, module.exports);
    return module.exports;
  }
  require(0);
`)
}
