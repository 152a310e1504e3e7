package script

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/vitrine/pkg/overlay"
	"github.com/chazu/vitrine/pkg/scene"
	"github.com/chazu/vitrine/pkg/spatial"
)

func runScript(t *testing.T, e *scene.Engine, source string) Result {
	t.Helper()
	res, err := NewConsole(e).Run(source)
	require.NoError(t, err)
	return res
}

func TestRunEmptySource(t *testing.T) {
	engine := scene.NewEngine()
	res := runScript(t, engine, "   \n\t")
	assert.True(t, res.OK())
}

func TestAddNodeWithKeywords(t *testing.T) {
	engine := scene.NewEngine()
	res := runScript(t, engine, `(add-node "KSampler" :x 10 :y 20 :w 140 :h 80)`)
	require.True(t, res.OK(), "errors: %v", res.Errors)

	nodes := engine.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, "KSampler", nodes[0].Title)
	assert.Equal(t, scene.Vec2{X: 10, Y: 20}, nodes[0].Pos)
	assert.Equal(t, scene.Vec2{X: 140, Y: 80}, nodes[0].Size)
}

func TestBatchEditScript(t *testing.T) {
	engine := scene.NewEngine()
	res := runScript(t, engine, `
; layout pass
(def id (add-node "a" :x 1 :y 2))
(move-node id 50 60)
(resize-node id 300 200)
(select-node id)
(pan 100 50)
(zoom 2)
(node-count)
`)
	require.True(t, res.OK(), "errors: %v", res.Errors)

	n := engine.Nodes()[0]
	assert.Equal(t, scene.Vec2{X: 50, Y: 60}, n.Pos)
	assert.Equal(t, scene.Vec2{X: 300, Y: 200}, n.Size)
	assert.True(t, n.Selected)

	cam := engine.Camera()
	assert.Equal(t, 2.0, cam.Scale)
	// Zoom anchored at the screen origin keeps the offset intact.
	assert.Equal(t, scene.Vec2{X: 100, Y: 50}, cam.Offset)
}

func TestSetValueBypassesCallbacks(t *testing.T) {
	engine := scene.NewEngine()
	calls := 0
	n := scene.NewNode("n")
	n.AddWidget("steps", scene.WidgetNumber, 20.0).WithCallback(func(any) { calls++ })
	id := engine.Add(n)

	res := runScript(t, engine, fmt.Sprintf(`(set-value %q "steps" 99)`, string(id)))
	require.True(t, res.OK(), "errors: %v", res.Errors)

	assert.Equal(t, 99.0, n.Widget("steps").Value, "integers arrive widened to float64")
	assert.Zero(t, calls, "programmatic writes never trigger widget callbacks")
}

func TestRemoveNode(t *testing.T) {
	engine := scene.NewEngine()
	id := engine.Add(scene.NewNode("n"))

	res := runScript(t, engine, fmt.Sprintf(`(remove-node %q)`, string(id)))
	require.True(t, res.OK(), "errors: %v", res.Errors)
	assert.Zero(t, engine.NodeCount())
}

func TestBuiltinErrorsAreScriptErrors(t *testing.T) {
	engine := scene.NewEngine()

	res := runScript(t, engine, `(move-node "ghost" 1 2)`)
	require.False(t, res.OK())
	assert.Contains(t, res.Errors[0].Message, "move-node")

	res = runScript(t, engine, `(undefined-function 1)`)
	assert.False(t, res.OK())
}

func TestErrorFormatting(t *testing.T) {
	assert.Equal(t, "line 3: boom", Error{Line: 3, Message: "boom"}.Error())
	assert.Equal(t, "boom", Error{Message: "boom"}.Error())
}

func TestToErrorsExtractsLine(t *testing.T) {
	errs := toErrors(errors.New("Error on line 7: undefined symbol `foo`"))
	require.Len(t, errs, 1)
	assert.Equal(t, 7, errs[0].Line)
	assert.Equal(t, "undefined symbol `foo`", errs[0].Message)

	errs = toErrors(errors.New("something opaque"))
	require.Len(t, errs, 1)
	assert.Zero(t, errs[0].Line)
	assert.Equal(t, "something opaque", errs[0].Message)
}

// TestScriptEditsSurfaceThroughDirtyDetection: script writes are external
// mutations, so the overlay picks them up by fingerprint comparison on
// the next tick rather than through the wired callback path.
func TestScriptEditsSurfaceThroughDirtyDetection(t *testing.T) {
	engine := scene.NewEngine()
	b := overlay.NewBridge(engine, spatial.NewTree(), nil)
	defer b.Close()

	calls := 0
	n := scene.NewNode("n")
	n.AddWidget("label", scene.WidgetText, "a").WithCallback(func(any) { calls++ })
	id := engine.Add(n)

	res := runScript(t, engine, fmt.Sprintf(`(set-value %q "label" "b")`, string(id)))
	require.True(t, res.OK(), "errors: %v", res.Errors)

	dirty := b.DetectDirty()
	require.Equal(t, []scene.NodeID{id}, dirty)
	assert.Equal(t, overlay.TextValue("b"), b.Snapshot(id).Field("label").Value)
	assert.Zero(t, calls)
}
