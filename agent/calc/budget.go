package calc

const (
	paymentShareOfDisposable = 0.15
	budgetTermMonths         = 60
	budgetPriceHaircut       = 0.9
	budgetDownPaymentShare   = 0.1
)

type BudgetInput struct {
	MonthlyIncome   float64 `json:"monthly_income"`
	MonthlyExpenses float64 `json:"monthly_expenses"`
}

type BudgetRecommendation struct {
	DisposableIncome  float64 `json:"disposable_income"`
	MaxMonthlyPayment float64 `json:"max_monthly_payment"`
	RecommendedPrice  float64 `json:"recommended_price"`
	DownPayment       float64 `json:"down_payment"`
	Rating            string  `json:"rating"`
}

const (
	BudgetGood     = "Good"
	BudgetModerate = "Moderate"
	BudgetTight    = "Tight"
)

// Budget sizes an affordable purchase from monthly cash flow. The payment is rounded
// to cents before rating, so a payment of exactly 300 rates Moderate.
func Budget(in BudgetInput) (BudgetRecommendation, error) {
	if in.MonthlyIncome < 0 || in.MonthlyExpenses < 0 {
		return BudgetRecommendation{}, invalid("income and expenses must be >= 0")
	}

	disposable := in.MonthlyIncome - in.MonthlyExpenses
	if disposable <= 0 {
		return BudgetRecommendation{DisposableIncome: round2(disposable), Rating: BudgetTight}, nil
	}

	maxPayment := round2(disposable * paymentShareOfDisposable)
	price := maxPayment * budgetTermMonths * budgetPriceHaircut

	return BudgetRecommendation{
		DisposableIncome:  round2(disposable),
		MaxMonthlyPayment: maxPayment,
		RecommendedPrice:  round2(price),
		DownPayment:       round2(price * budgetDownPaymentShare),
		Rating:            budgetRating(maxPayment),
	}, nil
}

func budgetRating(maxPayment float64) string {
	switch {
	case maxPayment > 500:
		return BudgetGood
	case maxPayment >= 300:
		return BudgetModerate
	default:
		return BudgetTight
	}
}
