package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromYAMLKeepsKeyOrder(t *testing.T) {
	src := `
start: zeta
steps:
  zeta:
    type: task
    next: [alpha, "", mid]
  alpha:
    label: First
  mid: {}
`
	out, err := FromYAML([]byte(src))
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"zeta","steps":{"zeta":{"type":"task","next":["alpha","","mid"]},"alpha":{"label":"First"},"mid":{}}}`, string(out))

	doc, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, stepNames(doc))
	assert.Equal(t, []string{"alpha", "mid"}, doc.Steps.Value("zeta").Next)
}

func TestFromYAMLScalars(t *testing.T) {
	out, err := FromYAML([]byte("a: 1\nb: true\nc: ~\nd: '1'\ne: 2.5\n"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":true,"c":null,"d":"1","e":2.5}`, string(out))
}

func TestFromYAMLAliases(t *testing.T) {
	src := `
steps:
  base: &shared
    type: human
  copy: *shared
`
	out, err := FromYAML([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, `{"steps":{"base":{"type":"human"},"copy":{"type":"human"}}}`, string(out))
}

func TestFromYAMLLegacyShape(t *testing.T) {
	src := `
Definition:
  Start: a
  Steps:
    a:
      Type: Condition
      Next: b
      Else: c
`
	out, err := FromYAML([]byte(src))
	require.NoError(t, err)

	doc, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "a", doc.Start)
	assert.Equal(t, StepTypeCondition, doc.Steps.Value("a").Type)
	assert.Equal(t, "c", doc.Steps.Value("a").Else)
}

func TestFromYAMLEmpty(t *testing.T) {
	out, err := FromYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFromYAMLInvalid(t *testing.T) {
	_, err := FromYAML([]byte("steps: [unclosed"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeParse, CodeOf(err))
}

func TestIsYAMLName(t *testing.T) {
	assert.True(t, IsYAMLName("flows/order.yaml"))
	assert.True(t, IsYAMLName("ORDER.YML"))
	assert.False(t, IsYAMLName("order.json"))
	assert.False(t, IsYAMLName("stdin"))
}

func TestFromYAMLMergeKeys(t *testing.T) {
	src := `
defaults: &task
  type: task
  on_failure: rollback
human: &human
  type: human
steps:
  charge:
    <<: *task
    label: Charge
  review:
    label: Review
    <<: [*human, *task]
  refund:
    <<: *task
    on_failure: alert
`
	out, err := FromYAML([]byte(src))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"defaults":{"type":"task","on_failure":"rollback"},
		"human":{"type":"human"},
		"steps":{
			"charge":{"type":"task","on_failure":"rollback","label":"Charge"},
			"review":{"label":"Review","type":"human","on_failure":"rollback"},
			"refund":{"type":"task","on_failure":"alert"}
		}
	}`, string(out))
	assert.NotContains(t, string(out), `\u003c\u003c`)

	doc, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, StepTypeHuman, doc.Steps.Value("review").Type)
	assert.Equal(t, "rollback", doc.Steps.Value("charge").OnFailure)
	assert.Equal(t, "alert", doc.Steps.Value("refund").OnFailure)
}

func TestFromYAMLQuotedMergeKeyIsLiteral(t *testing.T) {
	out, err := FromYAML([]byte(`{"<<": 1}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"<<":1}`, string(out))
}

func TestFromYAMLInvalidMergeValue(t *testing.T) {
	_, err := FromYAML([]byte("a:\n  <<: 3\n"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeParse, CodeOf(err))
}
