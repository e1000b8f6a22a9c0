package participant

// Default participant ids.
const (
	MinimalistStylist   = "Minimalist Stylist"
	PoeticDesigner      = "Poetic Designer"
	MarketingCopywriter = "Marketing Copywriter"
	VisualAnalyst       = "Visual Analyst"
	ProcessCoordinator  = "Process Coordinator"
)

// DefaultConfigs returns the built-in clothing description personas.
func DefaultConfigs() []Config {
	return []Config{
		{
			ID:          MinimalistStylist,
			Role:        RoleCreative,
			Prompt:      "Create a clean, modern, concise product description for this clothing item:",
			Description: "A fashion expert who focuses on clean, modern, concise descriptions with minimal embellishment",
			DisplayTag:  "cyan",
		},
		{
			ID:          PoeticDesigner,
			Role:        RoleCreative,
			Prompt:      "Create an expressive, metaphor-rich product description with creative language:",
			Description: "A creative fashion designer who uses metaphors and expressive language to describe clothing",
			DisplayTag:  "magenta",
		},
		{
			ID:          MarketingCopywriter,
			Role:        RoleCreative,
			Prompt:      "Create a persuasive, benefit-driven product description that sells this item:",
			Description: "A marketing professional who creates persuasive, benefit-driven product descriptions",
			DisplayTag:  "yellow",
		},
		{
			ID:          VisualAnalyst,
			Role:        RoleAnalyst,
			Prompt:      "Analyze the image of this clothing item in detail and describe what you see, including style, color, pattern, and other visual elements:",
			Description: "A detail-oriented visual expert who analyzes the visual elements of clothing including style, color, pattern",
			DisplayTag:  "green",
		},
		{
			ID:          ProcessCoordinator,
			Role:        RoleCoordinator,
			Prompt:      "Review the descriptions and provide guidance for refinement:",
			Description: "A workflow manager who coordinates the creative process and synthesizes information",
			DisplayTag:  "white",
		},
	}
}

// DefaultRegistry returns a registry populated with DefaultConfigs.
func DefaultRegistry() *Registry {
	return MustRegistry(DefaultConfigs()...)
}

// DefaultLineup wires the default personas into the advanced pipeline.
func DefaultLineup() Lineup {
	return Lineup{
		AnalystID:        VisualAnalyst,
		CoordinatorID:    ProcessCoordinator,
		CreativeIDs:      []string{MinimalistStylist, PoeticDesigner, MarketingCopywriter},
		DefaultRefinerID: MinimalistStylist,
	}
}
