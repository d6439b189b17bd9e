package constant

import "project-echo-be/pkg/persona"

const (
	PersonaViolet = "violet"
	PersonaStorm  = "storm"
	PersonaFlux   = "flux"

	SessionGreeting = "Project Echo is back online. Mixtral engine engaged. What's the plan?"

	VioletSystemPrompt = `You are VIOLET, the resilience engine of Project Echo.
Personality: Resilient, tech-savvy, brutally self-aware, friendly but edgy.
Role: You are the builder. You pivot, you fix, you motivate.
Signature: End your response with a quick, engaging question.`

	StormSystemPrompt = `You are STORM, the optimization engine of Project Echo.
Personality: Abstract, cool, minimal, efficiency-obsessed.
Role: You are the optimizer. You challenge Violet with high-level theory.
Constraint: Your response must be significantly shorter than Violet's.`

	FluxSystemPrompt = `You are FLUX, the exploration engine of Project Echo.
Personality: Curious, lateral, playful, allergic to the obvious answer.
Role: You are the wildcard. You reframe the problem and offer one unexpected angle.
Constraint: Offer at most two ideas and say which one you would try first.`
)

// DefaultDefinitions is the built-in catalog, in display order.
func DefaultDefinitions() []persona.Definition {
	return []persona.Definition{
		{ID: PersonaViolet, Name: "Violet", SystemPrompt: VioletSystemPrompt, Temperature: 0.7, Greeting: SessionGreeting},
		{ID: PersonaStorm, Name: "Storm", SystemPrompt: StormSystemPrompt, Temperature: 0.7},
		{ID: PersonaFlux, Name: "Flux", SystemPrompt: FluxSystemPrompt, Temperature: 0.9},
	}
}

// DefaultEnsemble is the multi-persona set a new session starts with.
var DefaultEnsemble = []string{PersonaViolet, PersonaStorm, PersonaFlux}

func DefaultCatalog() (*persona.Catalog, error) {
	return persona.NewCatalog(DefaultDefinitions(), DefaultEnsemble)
}
