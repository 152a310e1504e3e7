package script

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/vitrine/pkg/scene"
)

// Argument helpers ----------------------------------------------------------

// isKeyword checks whether a Sexp is a preprocessed keyword string and
// returns its bare name.
func isKeyword(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// splitArgs separates keyword pairs from positional arguments.
func splitArgs(args []zygo.Sexp) (kw map[string]zygo.Sexp, pos []zygo.Sexp) {
	kw = make(map[string]zygo.Sexp)
	for i := 0; i < len(args); {
		if name, ok := isKeyword(args[i]); ok && i+1 < len(args) {
			kw[name] = args[i+1]
			i += 2
			continue
		}
		pos = append(pos, args[i])
		i++
	}
	return kw, pos
}

func argFloat(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T", s)
}

func argString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T", s)
}

func argNodeID(s zygo.Sexp) (scene.NodeID, error) {
	str, err := argString(s)
	if err != nil {
		return scene.ZeroID, fmt.Errorf("expected node id: %w", err)
	}
	return scene.NodeID(str), nil
}

// argValue converts a Sexp into the untyped value form widgets carry.
func argValue(s zygo.Sexp) (any, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpStr:
		return v.S, nil
	case *zygo.SexpBool:
		return v.Val, nil
	}
	return nil, fmt.Errorf("expected number, string, or bool, got %T", s)
}

// Builtin registration ------------------------------------------------------

// registerBuiltins installs the scene mutation builtins. Every builtin
// goes straight to the engine's programmatic API, bypassing widget
// callbacks by design.
func registerBuiltins(env *zygo.Zlisp, e *scene.Engine) {

	// (add-node "title" :x 10 :y 20 :w 140 :h 80) -> id
	env.AddFunction("add_node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		kw, pos := splitArgs(args)
		if len(pos) != 1 {
			return zygo.SexpNull, fmt.Errorf("add-node: want (add-node \"title\" ...), got %d positional args", len(pos))
		}
		title, err := argString(pos[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("add-node: title: %w", err)
		}
		n := scene.NewNode(title)
		for key, set := range map[string]*float64{
			"x": &n.Pos.X, "y": &n.Pos.Y, "w": &n.Size.X, "h": &n.Size.Y,
		} {
			if v, ok := kw[key]; ok {
				f, err := argFloat(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("add-node: %s: %w", key, err)
				}
				*set = f
			}
		}
		id := e.Add(n)
		return &zygo.SexpStr{S: string(id)}, nil
	})

	// (remove-node id)
	env.AddFunction("remove_node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("remove-node: want (remove-node id)")
		}
		id, err := argNodeID(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("remove-node: %w", err)
		}
		if err := e.Remove(id); err != nil {
			return zygo.SexpNull, fmt.Errorf("remove-node: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// (move-node id x y)
	env.AddFunction("move_node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("move-node: want (move-node id x y)")
		}
		id, err := argNodeID(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-node: %w", err)
		}
		x, err := argFloat(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-node: x: %w", err)
		}
		y, err := argFloat(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-node: y: %w", err)
		}
		if err := e.Move(id, x, y); err != nil {
			return zygo.SexpNull, fmt.Errorf("move-node: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// (resize-node id w h)
	env.AddFunction("resize_node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("resize-node: want (resize-node id w h)")
		}
		id, err := argNodeID(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("resize-node: %w", err)
		}
		w, err := argFloat(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("resize-node: w: %w", err)
		}
		h, err := argFloat(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("resize-node: h: %w", err)
		}
		if err := e.Resize(id, w, h); err != nil {
			return zygo.SexpNull, fmt.Errorf("resize-node: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// (set-value id "field" value)
	env.AddFunction("set_value", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("set-value: want (set-value id \"field\" value)")
		}
		id, err := argNodeID(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-value: %w", err)
		}
		field, err := argString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-value: field: %w", err)
		}
		value, err := argValue(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-value: %w", err)
		}
		if err := e.SetValue(id, field, value); err != nil {
			return zygo.SexpNull, fmt.Errorf("set-value: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// (select-node id) / (select-node id false)
	env.AddFunction("select_node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 || len(args) > 2 {
			return zygo.SexpNull, fmt.Errorf("select-node: want (select-node id [selected])")
		}
		id, err := argNodeID(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select-node: %w", err)
		}
		selected := true
		if len(args) == 2 {
			b, ok := args[1].(*zygo.SexpBool)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("select-node: expected bool, got %T", args[1])
			}
			selected = b.Val
		}
		if err := e.Select(id, selected); err != nil {
			return zygo.SexpNull, fmt.Errorf("select-node: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// (pan dx dy)
	env.AddFunction("pan", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("pan: want (pan dx dy)")
		}
		dx, err := argFloat(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pan: dx: %w", err)
		}
		dy, err := argFloat(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pan: dy: %w", err)
		}
		e.Pan(dx, dy)
		return zygo.SexpNull, nil
	})

	// (zoom factor) / (zoom factor cx cy)
	env.AddFunction("zoom", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 && len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("zoom: want (zoom factor [cx cy])")
		}
		factor, err := argFloat(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("zoom: factor: %w", err)
		}
		var cx, cy float64
		if len(args) == 3 {
			if cx, err = argFloat(args[1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("zoom: cx: %w", err)
			}
			if cy, err = argFloat(args[2]); err != nil {
				return zygo.SexpNull, fmt.Errorf("zoom: cy: %w", err)
			}
		}
		e.ZoomAt(factor, cx, cy)
		return zygo.SexpNull, nil
	})

	// (node-count)
	env.AddFunction("node_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return &zygo.SexpInt{Val: int64(e.NodeCount())}, nil
	})
}
