package skin

var toneTips = map[string][]string{
	ToneFair:   {"Fair skin is sensitive to sun exposure. Make sure to use sunscreen!"},
	ToneLight:  {"Use products with gentle exfoliants to brighten up your skin tone."},
	ToneMedium: {"Medium skin tone often tans easily. Hydrate and protect with SPF."},
	ToneTan:    {"Tan skin can be prone to dryness. Make sure to use a moisturizing routine."},
	ToneDeep:   {"Deep skin tones may experience hyperpigmentation. Consider using brightening treatments."},
}

// Normal and Acne-Prone textures have no tips.
var textureTips = map[string][]string{
	TextureVerySmooth: {"Great texture! Keep up with your regular skincare routine."},
	TextureSmooth:     {"Consider adding a mild exfoliant to maintain smooth skin."},
	TextureOily:       {"Use a gel-based moisturizer and clean your face with an oil-control cleanser."},
	TextureDry:        {"Opt for hydrating serums and rich moisturizers to maintain skin moisture."},
}

var elasticityTips = map[string][]string{
	"High": {
		"Keep up with your skincare routine to maintain elasticity.",
		"Consider incorporating collagen-boosting products for long-term benefits.",
	},
	"Moderate": {
		"Add a firming serum or treatment to improve elasticity.",
		"Regular moisturizing and SPF can help maintain skin elasticity.",
	},
	"Low": {
		"Consider using products that support skin regeneration, like retinoids.",
		"Hydrate your skin regularly with a richer moisturizer.",
	},
}

var hydrationTips = map[string][]string{
	"Optimal": {
		"Keep your hydration levels up by drinking water and using hydrating products.",
		"Continue using your current skincare routine for healthy, hydrated skin.",
	},
	"Good": {"Consider adding a more hydrating serum to boost moisture levels."},
	"Average": {
		"Use a thicker moisturizer and stay hydrated throughout the day.",
		"Consider using a hydrating mask once a week for deep hydration.",
	},
	"Low": {"Your skin may need extra hydration. Use a rich moisturizer and hydrating serum."},
}

// ToneTip returns the tip for a tone bucket, or "" for unknown tones.
func ToneTip(tone string) string {
	tips := toneTips[tone]
	if len(tips) == 0 {
		return ""
	}
	return tips[0]
}

// Tips returns care tips for a result in tone, texture, elasticity, hydration order.
// Placeholder results produce no tips.
func Tips(r Result) []string {
	tips := make([]string, 0, 7)
	tips = append(tips, toneTips[r.SkinTone]...)
	tips = append(tips, textureTips[r.Texture]...)
	tips = append(tips, elasticityTips[r.Elasticity]...)
	tips = append(tips, hydrationTips[r.Hydration]...)
	return tips
}

// DistributionPoint is one point of a static distribution chart.
type DistributionPoint struct {
	Name  string `json:"name"`
	Value int    `json:"uv"`
}

// ToneDistribution is the reference skin tone chart.
func ToneDistribution() []DistributionPoint {
	return []DistributionPoint{
		{Name: ToneDeep, Value: 40},
		{Name: ToneTan, Value: 70},
		{Name: ToneMedium, Value: 90},
		{Name: ToneLight, Value: 120},
		{Name: ToneFair, Value: 150},
	}
}

// TextureDistribution is the reference skin texture chart.
func TextureDistribution() []DistributionPoint {
	return []DistributionPoint{
		{Name: TextureSmooth, Value: 15},
		{Name: TextureOily, Value: 30},
		{Name: "Rough", Value: 45},
	}
}
