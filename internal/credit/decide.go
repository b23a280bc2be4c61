package credit

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/credisys/credit-approval/internal/domain"
)

// Reason classifies the terminal outcome of an eligibility decision.
// A rejection is a valid outcome, not an error.
type Reason string

const (
	ReasonApproved          Reason = "APPROVED"
	ReasonEMIBurdenExceeded Reason = "EMI_BURDEN_EXCEEDED"
	ReasonRateBelowTier     Reason = "RATE_BELOW_TIER_MINIMUM"
	ReasonScoreTooLow       Reason = "CREDIT_SCORE_TOO_LOW"
	ReasonLimitExceeded     Reason = "APPROVED_LIMIT_EXCEEDED"
)

type LoanRequest struct {
	Amount       decimal.Decimal
	AnnualRate   float64
	TenureMonths int
}

// DecideOptions selects the variant of the decision procedure. Read-only
// eligibility checks and committed loan creations share one procedure; the
// differences between the two paths are explicit flags.
type DecideOptions struct {
	// Commit marks the decision as one that will be persisted on approval.
	Commit bool
	// ZeroScoreOnLimitBreach forces the reported score to 0 when the
	// approved-limit gate rejects the request (check-mode behavior).
	ZeroScoreOnLimitBreach bool
}

type Decision struct {
	Approved      bool
	Score         int
	RequestedRate float64
	CorrectedRate float64
	Installment   decimal.Decimal
	Reason        Reason
}

// Decide runs the full eligibility procedure over a consistent snapshot of
// one customer and their loans. It is pure: persistence of an approved loan
// is the caller's concern, and the caller is expected to hold the snapshot
// inside a transaction when committing.
func Decide(customer *domain.Customer, loans []domain.Loan, req LoanRequest, opts DecideOptions, today time.Time) Decision {
	d := Decision{
		RequestedRate: req.AnnualRate,
		CorrectedRate: req.AnnualRate,
	}

	activeEMIs := decimal.Zero
	activePrincipal := decimal.Zero
	for _, l := range loans {
		if l.Active(today) {
			activeEMIs = activeEMIs.Add(l.MonthlyPayment)
			activePrincipal = activePrincipal.Add(l.LoanAmount)
		}
	}

	// EMI-burden gate: reject before scoring when existing EMIs already
	// consume more than half the salary. The rate stays uncorrected and the
	// installment is still reported.
	halfSalary := customer.MonthlySalary.Mul(decimal.NewFromFloat(0.5))
	if activeEMIs.GreaterThan(halfSalary) {
		d.Reason = ReasonEMIBurdenExceeded
		d.Installment = MonthlyInstallment(req.Amount, req.TenureMonths, d.CorrectedRate)
		return d
	}

	d.Score = Score(customer.ApprovedLimit, loans, today)

	// Rate-tier policy on the score.
	switch {
	case d.Score > 50:
		d.Approved = true
	case d.Score > 30:
		d.Approved = req.AnnualRate >= 12.0
		if !d.Approved {
			d.CorrectedRate = 12.0
			d.Reason = ReasonRateBelowTier
		}
	case d.Score > 10:
		d.Approved = req.AnnualRate >= 16.0
		if !d.Approved {
			d.CorrectedRate = 16.0
			d.Reason = ReasonRateBelowTier
		}
	default:
		d.Reason = ReasonScoreTooLow
	}

	// Limit gate overrides the tier outcome.
	if activePrincipal.Add(req.Amount).GreaterThan(customer.ApprovedLimit) {
		d.Approved = false
		d.Reason = ReasonLimitExceeded
		if opts.ZeroScoreOnLimitBreach {
			d.Score = 0
		}
	}

	if d.Approved {
		d.Reason = ReasonApproved
	}

	d.Installment = MonthlyInstallment(req.Amount, req.TenureMonths, d.CorrectedRate)
	return d
}

// ApprovedLimitFromSalary fixes a new customer's limit at 36x the monthly
// salary, rounded to the nearest 100000.
func ApprovedLimitFromSalary(monthlySalary decimal.Decimal) decimal.Decimal {
	return monthlySalary.Mul(decimal.NewFromInt(36)).Round(-5)
}
