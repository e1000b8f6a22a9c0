package evaluation

// DefaultQualityTemplate asks for an overall YES/NO quality verdict.
const DefaultQualityTemplate = `You are a quality assurance specialist evaluating product descriptions for a {{.Category}}.
Base description: {{.BaseDescription}}

{{.Descriptions}}

Evaluate the quality of these descriptions according to the following criteria:
1. Accuracy - Does the description match the product details?
2. Creativity - Is the language engaging and distinctive?
3. Marketing Value - Would this description help sell the product?
4. Uniqueness - Do the descriptions offer different perspectives?
5. Completeness - Do the descriptions cover all important aspects?

For each criterion, rate the set of descriptions from 1-10. Then provide an overall assessment.
Have we reached a high quality threshold (where further iterations would yield minimal improvements)?
Answer YES or NO.
`

// DefaultConsensusTemplate asks whether the latest drafts converged.
const DefaultConsensusTemplate = `Analyze these descriptions of a {{.Category}} and determine if they have reached a consensus
on the key elements and overall portrayal of the product:

{{.Descriptions}}

Have the descriptions converged on similar themes, qualities, and selling points?
Consider:
1. Do they emphasize the same key features?
2. Do they have similar tones or approaches?
3. Are they highlighting the same benefits?
4. Would they appeal to the same target audience?

Answer YES if there is substantial consensus, or NO if there are still significant differences
in perspective that would benefit from further refinement.
`

// DefaultSelectorTemplate asks which creatives should refine next.
const DefaultSelectorTemplate = `Based on this feedback from the {{.CoordinatorID}}:
---
{{.Feedback}}
---

Determine which agents should refine their descriptions. Select at least one and at most {{.Max}} agents
from the following list:
{{- range .Candidates}}
- {{.}}
{{- end}}

Return only the names of the selected agents, separated by commas, and nothing else.
`

// DefaultFinalTemplate asks for the final selected or combined description.
const DefaultFinalTemplate = `You are tasked with selecting the best clothing description for a {{.Category}} from the following options.
Base description: {{.BaseDescription}}

{{.Descriptions}}

Analyze these descriptions and select the one that best captures the essence of the {{.Category}} with the most
appealing, accurate, and marketable description. You may also combine elements from multiple descriptions
if that creates a superior result.

Provide ONLY the final selected or combined description, with no additional commentary.
`

// promptData is the value evaluator templates are executed with.
type promptData struct {
	Category        string
	BaseDescription string
	Descriptions    string
	CoordinatorID   string
	Feedback        string
	Candidates      []string
	Max             int
}
