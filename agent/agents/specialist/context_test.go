package specialist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	calcx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/calc"
	statex "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/state"
)

func TestAssembleContextNilSession(t *testing.T) {
	t.Parallel()
	assert.Empty(t, AssembleContext(nil, 10))
}

func TestAssembleContextIncludesDerivedHints(t *testing.T) {
	t.Parallel()

	sess := statex.NewSession("s1", testNow)
	sess.AppendUser("what would the loan payment be?", testNow)
	sess.AppendToolCall(statex.ToolCallLog{
		Specialist: "technical", ToolName: statex.SearchToolName,
		ParamsSummary: `{"category":"SUV"}`, ResultSummary: `{"count":2}`,
	}, testNow)
	sess.SetProfile(calcx.CustomerProfile{FamilySize: 4, PrimaryUsage: "commuting"})
	sess.SetRecommended([]string{"honda-crv-2024", "jeep-wrangler-2024"})

	text := AssembleContext(sess, 30)
	assert.Contains(t, text, `"family_size":4`)
	assert.Contains(t, text, "Recommended vehicles: honda-crv-2024, jeep-wrangler-2024")
	assert.Contains(t, text, `search_inventory({"category":"SUV"})`)
	assert.Contains(t, text, "financing was discussed recently")
	assert.Contains(t, text, "user: what would the loan payment be?")
}

func TestAssembleContextOmitsEmptySections(t *testing.T) {
	t.Parallel()

	sess := statex.NewSession("s1", testNow)
	sess.AppendUser("hello", testNow)

	text := AssembleContext(sess, 30)
	assert.False(t, strings.Contains(text, "Customer profile"))
	assert.False(t, strings.Contains(text, "Recommended vehicles"))
	assert.False(t, strings.Contains(text, "financing"))
	assert.Equal(t, "Recent conversation:\nuser: hello", text)
}

func TestTruncateSummaries(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", summaryLimit+10)
	got := truncate(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, summaryLimit+3, len([]rune(got)))
	assert.Equal(t, "short", truncate("short"))
}
