package overlay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/vitrine/pkg/scene"
)

func TestConvertValue(t *testing.T) {
	tests := []struct {
		name string
		typ  scene.WidgetType
		raw  any
		want Value
	}{
		{"float number", scene.WidgetNumber, 3.5, NumberValue(3.5)},
		{"int widens", scene.WidgetNumber, 42, NumberValue(42)},
		{"int64 widens", scene.WidgetNumber, int64(7), NumberValue(7)},
		{"string text", scene.WidgetText, "hello", TextValue("hello")},
		{"bool toggle", scene.WidgetToggle, true, ToggleValue(true)},
		{"combo string", scene.WidgetCombo, "euler", ChoiceValue("euler")},
		{"numeric toggle", scene.WidgetToggle, 1.0, ToggleValue(true)},
		{"zero toggle", scene.WidgetToggle, 0, ToggleValue(false)},
		{"bool on number widget", scene.WidgetNumber, true, NumberValue(1)},
		{"number on text widget", scene.WidgetText, 5, TextValue("5")},
		{"already tagged", scene.WidgetNumber, NumberValue(9), NumberValue(9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convertValue(tt.typ, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertValueRejects(t *testing.T) {
	_, err := convertValue(scene.WidgetNumber, nil)
	assert.Error(t, err)
	_, err = convertValue(scene.WidgetText, struct{ X int }{})
	assert.Error(t, err)
}

func TestValueAnyRoundTrip(t *testing.T) {
	assert.Equal(t, 2.5, NumberValue(2.5).Any())
	assert.Equal(t, "x", TextValue("x").Any())
	assert.Equal(t, "x", ChoiceValue("x").Any())
	assert.Equal(t, true, ToggleValue(true).Any())
}

func TestValueKindJSON(t *testing.T) {
	data, err := json.Marshal(NumberValue(1.5))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"number","number":1.5}`, string(data))

	var v Value
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"choice","text":"euler"}`), &v))
	assert.Equal(t, ChoiceValue("euler"), v)

	var bad Value
	err = json.Unmarshal([]byte(`{"kind":"nope"}`), &bad)
	assert.Error(t, err)
}
