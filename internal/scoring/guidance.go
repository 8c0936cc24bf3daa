package scoring

// Guidance is the copy shown next to a risk level.
type Guidance struct {
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
}

var guidance = map[RiskLevel]Guidance{
	RiskLow: {
		Summary: "Your symptoms and lifestyle patterns show minimal indicators of PCOS. Keep maintaining a balanced routine!",
		Recommendations: []string{
			"Maintain a healthy diet rich in fruits and vegetables.",
			"Continue light exercise like walking or yoga.",
			"Track your menstrual cycle regularly.",
		},
	},
	RiskModerate: {
		Summary: "Some symptoms indicate mild-to-moderate chances of PCOS. Consider observing your cycles and maintaining a healthy routine.",
		Recommendations: []string{
			"Increase physical activity to 30–45 mins daily.",
			"Reduce sugar & processed food consumption.",
			"Practice stress reduction (meditation, journaling).",
			"Track cycle changes closely.",
		},
	},
	RiskHigh: {
		Summary: "Your symptoms strongly align with common PCOS indicators. A clinical consultation and ultrasound test is recommended.",
		Recommendations: []string{
			"Consult a gynecologist for a detailed checkup.",
			"Consider taking an ultrasound & hormone test.",
			"Follow a structured workout routine.",
			"Limit sugar, oily foods, and refined carbs.",
			"Improve sleep quality (7–8 hrs).",
		},
	},
}

// GuidanceFor returns a copy of the guidance for level. Unknown levels get
// the High copy.
func GuidanceFor(level RiskLevel) Guidance {
	g, ok := guidance[level]
	if !ok {
		g = guidance[RiskHigh]
	}
	recs := make([]string, len(g.Recommendations))
	copy(recs, g.Recommendations)
	return Guidance{Summary: g.Summary, Recommendations: recs}
}
