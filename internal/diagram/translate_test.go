package diagram

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateFlatDocument(t *testing.T) {
	output := Translate(`{"steps":{"a":{"type":"task","next":"b"},"b":{"type":"task"}},"start":"a"}`)

	expected := "flowchart TD\n" +
		"_start_((Start))\n" +
		"a[a]\n" +
		"b[b]\n" +
		"\n" +
		"_start_ --> a\n" +
		"a --> b\n"
	assert.Equal(t, expected, output)
}

func TestTranslateLegacyMatchesFlat(t *testing.T) {
	legacy := Translate(`{"Definition":{"Steps":{"a":{"Type":"Condition","Next":"b","Else":"c"}},"Start":"a"}}`)
	flat := Translate(`{"steps":{"a":{"type":"condition","next":["b"],"else":"c"}},"start":"a"}`)

	assert.Equal(t, flat, legacy)
	assert.Contains(t, legacy, "a{a}\n")
	assert.Contains(t, legacy, "a -->|yes| b\n")
	assert.Contains(t, legacy, "a -->|no| c\n")
}

func TestTranslateConditionYesGoesToFirstNext(t *testing.T) {
	output := Translate(`{"steps":{"q":{"type":"condition","next":["A","B"],"else":"C"}}}`)

	assert.Equal(t, 1, strings.Count(output, "-->|yes|"))
	assert.Contains(t, output, "q -->|yes| A\n")
	assert.NotContains(t, output, "-->|yes| B")
	assert.NotContains(t, output, "q --> B")
	assert.Contains(t, output, "q -->|no| C\n")
}

func TestTranslateWaitFor(t *testing.T) {
	output := Translate(`{"steps":{"j":{"type":"join","wait_for":["X","Y"]}}}`)

	assert.Contains(t, output, "j((j))\n")
	assert.Contains(t, output, "X -.- j\n")
	assert.Contains(t, output, "Y -.- j\n")
	assert.NotContains(t, output, "j -.- X")
	assert.NotContains(t, output, "j -.- Y")
}

func TestTranslateFailureAndParallelAreIndependent(t *testing.T) {
	output := Translate(`{"steps":{"s":{"next":"n","on_failure":"comp","parallel":["p1","p2"]}}}`)

	assert.Contains(t, output, "s --> n\n")
	assert.Equal(t, 1, strings.Count(output, "-.->|on failure|"))
	assert.Contains(t, output, "s -.->|on failure| comp\n")
	assert.Contains(t, output, "s ==> p1\n")
	assert.Contains(t, output, "s ==> p2\n")
}

func TestTranslateOneNodeLinePerStep(t *testing.T) {
	output := Translate(`{"steps":{
		"start-here":{"type":"task","label":"Begin","next":"review"},
		"review":{"type":"human","next":"decide"},
		"decide":{"type":"condition","next":["save"],"else":"rollback"},
		"save":{"type":"save_point","parallel":["x","y"]},
		"x":{"type":"fork"},
		"y":{"type":"parallel"},
		"rollback":{"type":"Task","on_failure":"alert"},
		"merge":{"type":"JOIN","wait_for":["x","y"]}
	},"start":"start-here"}`)

	sections := strings.SplitN(output, "\n\n", 2)
	require.Len(t, sections, 2)

	nodeLines := strings.Split(sections[0], "\n")
	assert.Equal(t, FlowchartHeader, nodeLines[0])
	assert.Equal(t, []string{
		"_start_((Start))",
		"start_here[Begin]",
		"review[/ review /]",
		"decide{decide}",
		"save[( save )]",
		"x[x]",
		"y[y]",
		"rollback[rollback]",
		"merge((merge))",
	}, nodeLines[1:])

	assert.Equal(t, "_start_ --> start_here\n"+
		"start_here --> review\n"+
		"review --> decide\n"+
		"decide -->|yes| save\n"+
		"decide -->|no| rollback\n"+
		"save ==> x\n"+
		"save ==> y\n"+
		"rollback -.->|on failure| alert\n"+
		"x -.- merge\n"+
		"y -.- merge\n", sections[1])
}

func TestTranslateDanglingReferencesStillEmitted(t *testing.T) {
	output := Translate(`{"steps":{"a":{"next":"nowhere"}}}`)
	assert.Contains(t, output, "a --> nowhere\n")
	assert.NotContains(t, output, "nowhere[")
}

func TestTranslateEmptyInputShowsPlaceholder(t *testing.T) {
	assert.Equal(t, Placeholder, Translate(""))
	assert.True(t, strings.HasPrefix(Placeholder, FlowchartHeader))
	for _, id := range []string{"step1", "step2", "step3", "step4", "step5", "step6", "step7", "step8"} {
		assert.Contains(t, Placeholder, id)
	}
}

func TestTranslateMalformedJSON(t *testing.T) {
	output := Translate(`{not json`)

	assert.True(t, strings.HasPrefix(output, FlowchartHeader+"\n"))
	assert.Contains(t, output, "error([Invalid JSON: ")
	assert.True(t, strings.HasSuffix(output, "])"))
	assert.NotContains(t, output, "Invalid JSON format")
}

func TestTranslateUnrecognisedShape(t *testing.T) {
	for _, input := range []string{`{"start":"a"}`, `[]`, `{"steps":[]}`, `{"Definition":{}}`, `42`} {
		assert.Equal(t, "flowchart TD\nerror([Invalid JSON format])", Translate(input), "input %s", input)
	}
}

func TestTranslateWhitespaceIsNotEmpty(t *testing.T) {
	output := Translate("   ")
	assert.NotEqual(t, Placeholder, output)
	assert.Contains(t, output, "error([Invalid JSON: ")
}

func TestTranslateConcurrentCallsAgree(t *testing.T) {
	input := `{"steps":{"a":{"next":["b","c"]},"b":{"wait_for":"a"},"c":{}},"start":"a"}`
	want := Translate(input)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Translate(input)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestFromJSONReturnsTypedErrors(t *testing.T) {
	_, err := FromJSON([]byte(`{"foo":1}`))
	require.Error(t, err)
	assert.Equal(t, "flowchart TD\nerror([Invalid JSON format])", ErrorDiagram(err))
}
