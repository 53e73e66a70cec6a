package pattern

import "ForexSentinel/internal/model"

// DetectThreeWhiteSoldiers matches three bullish bars with rising opens and closes.
func DetectThreeWhiteSoldiers(c1, c2, c3 model.Bar) *model.Pattern {
	allBullish := c1.Bullish() && c2.Bullish() && c3.Bullish()
	advancing := c2.Open > c1.Open && c2.Close > c1.Close && c3.Open > c2.Open && c3.Close > c2.Close
	if !allBullish || !advancing {
		return nil
	}
	return &model.Pattern{
		Name:        "Three White Soldiers",
		Type:        model.PatternBullishContinuation,
		Reliability: model.ReliabilityHigh,
		Description: "Forte continuação de alta",
	}
}

// DetectThreeBlackCrows matches three bearish bars with falling opens and closes.
func DetectThreeBlackCrows(c1, c2, c3 model.Bar) *model.Pattern {
	allBearish := c1.Bearish() && c2.Bearish() && c3.Bearish()
	declining := c2.Open < c1.Open && c2.Close < c1.Close && c3.Open < c2.Open && c3.Close < c2.Close
	if !allBearish || !declining {
		return nil
	}
	return &model.Pattern{
		Name:        "Three Black Crows",
		Type:        model.PatternBearishContinuation,
		Reliability: model.ReliabilityHigh,
		Description: "Forte continuação de baixa",
	}
}
