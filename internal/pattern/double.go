package pattern

import "ForexSentinel/internal/model"

// DetectEngulfing matches a second body that opens beyond the first close and
// closes beyond the first open in the opposite color.
func DetectEngulfing(prev, cur model.Bar) *model.Pattern {
	if prev.Bearish() && cur.Bullish() && cur.Open < prev.Close && cur.Close > prev.Open {
		return &model.Pattern{
			Name:        "Bullish Engulfing",
			Type:        model.PatternBullishReversal,
			Reliability: model.ReliabilityHigh,
			Description: "Forte reversão de alta",
		}
	}
	if prev.Bullish() && cur.Bearish() && cur.Open > prev.Close && cur.Close < prev.Open {
		return &model.Pattern{
			Name:        "Bearish Engulfing",
			Type:        model.PatternBearishReversal,
			Reliability: model.ReliabilityHigh,
			Description: "Forte reversão de baixa",
		}
	}
	return nil
}

// DetectHarami matches a smaller opposite-color body contained in the first body.
func DetectHarami(prev, cur model.Bar) *model.Pattern {
	smaller := cur.Body() < prev.Body()
	if prev.Bearish() && cur.Bullish() && cur.Open > prev.Close && cur.Close < prev.Open && smaller {
		return &model.Pattern{
			Name:        "Bullish Harami",
			Type:        model.PatternBullishReversal,
			Reliability: model.ReliabilityMedium,
			Description: "Possível reversão de alta",
		}
	}
	if prev.Bullish() && cur.Bearish() && cur.Open < prev.Close && cur.Close > prev.Open && smaller {
		return &model.Pattern{
			Name:        "Bearish Harami",
			Type:        model.PatternBearishReversal,
			Reliability: model.ReliabilityMedium,
			Description: "Possível reversão de baixa",
		}
	}
	return nil
}

// DetectPiercingLine matches a bullish bar opening below a bearish close and
// closing above its midpoint but below its open.
func DetectPiercingLine(prev, cur model.Bar) *model.Pattern {
	if !prev.Bearish() || !cur.Bullish() {
		return nil
	}
	mid := (prev.Open + prev.Close) / 2
	if cur.Open < prev.Close && cur.Close > mid && cur.Close < prev.Open {
		return &model.Pattern{
			Name:        "Piercing Line",
			Type:        model.PatternBullishReversal,
			Reliability: model.ReliabilityMedium,
			Description: "Sinal de reversão de alta",
		}
	}
	return nil
}

// DetectDarkCloudCover is the bearish mirror of DetectPiercingLine.
func DetectDarkCloudCover(prev, cur model.Bar) *model.Pattern {
	if !prev.Bullish() || !cur.Bearish() {
		return nil
	}
	mid := (prev.Open + prev.Close) / 2
	if cur.Open > prev.Close && cur.Close < mid && cur.Close > prev.Open {
		return &model.Pattern{
			Name:        "Dark Cloud Cover",
			Type:        model.PatternBearishReversal,
			Reliability: model.ReliabilityMedium,
			Description: "Sinal de reversão de baixa",
		}
	}
	return nil
}
