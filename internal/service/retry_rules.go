package service

import (
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/samber/lo"
)

const (
	// forceBackoffRetryCount is the retry count above which force-backoff codes stop rescheduling in D61_180
	forceBackoffRetryCount = 12
	// provider1ExclusionRetryCount is the retry count above which provider 1 is excluded in D31_60
	provider1ExclusionRetryCount = 8
)

// RetryDecision is the resolved outcome of the retry rules for a failed attempt
type RetryDecision struct {
	Action types.RetryAction `json:"action"`
	// Track is the rail the retry must use, empty for backoff actions
	Track           types.PaymentTrack      `json:"track,omitempty"`
	Code            types.PaymentStatusCode `json:"code"`
	Bucket          types.AgingBucket       `json:"bucket"`
	TotalRetryCnt   int                     `json:"total_retry_cnt"`
	RoutingCtxPatch types.RoutingContext    `json:"routing_ctx_patch"`
}

type retryRule struct {
	action types.RetryAction
	track  types.PaymentTrack
}

var (
	ruleAnyCardNow       = retryRule{types.RetryActionImmediateRetry, types.PaymentTrackAnyCard}
	ruleBankCardFriday   = retryRule{types.RetryActionRescheduleNextFriday, types.PaymentTrackBankCard}
	ruleBankCardEOM      = retryRule{types.RetryActionRescheduleNextFridayEOM, types.PaymentTrackBankCard}
	ruleAlertBackoff     = retryRule{action: types.RetryActionAlertBackoff}
	ruleBackoff          = retryRule{action: types.RetryActionBackoff}
	ruleNotPossible      = retryRule{action: types.RetryActionNotPossible}
	ruleAlwaysImpossible = bucketRules(ruleNotPossible, ruleNotPossible, ruleNotPossible, ruleNotPossible)
	ruleAlertThenBackoff = bucketRules(ruleAlertBackoff, ruleAlertBackoff, ruleBackoff, ruleBackoff)
	ruleBankCardLadder   = bucketRules(ruleBankCardFriday, ruleBankCardFriday, ruleBankCardEOM, ruleBackoff)
)

func bucketRules(d0to30, d31to60, d61to180, d181plus retryRule) map[types.AgingBucket]retryRule {
	return map[types.AgingBucket]retryRule{
		types.AgingBucket0To30:   d0to30,
		types.AgingBucket31To60:  d31to60,
		types.AgingBucket61To180: d61to180,
		types.AgingBucket181Plus: d181plus,
	}
}

// retryRules is never mutated after init. Codes missing from it back off.
var retryRules = map[types.PaymentStatusCode]map[types.AgingBucket]retryRule{
	types.PaymentStatusCodeExternalFailure: bucketRules(ruleAnyCardNow, ruleAnyCardNow, ruleAnyCardNow, ruleBackoff),
	types.PaymentStatusCodeInternalFailure: ruleAlertThenBackoff,

	types.PaymentStatusCodeNoValidBankCard:              ruleAlertThenBackoff,
	types.PaymentStatusCodeNoRemainingBankCardProcessor: ruleBankCardLadder,
	types.PaymentStatusCodeNoValidAnyCard:               ruleAlwaysImpossible,
	types.PaymentStatusCodeNoRemainingAnyCardProcessor:  ruleAlwaysImpossible,
	types.PaymentStatusCodeNoValidBankEFT:               ruleAlwaysImpossible,
	types.PaymentStatusCodeNoRemainingBankEFTProcessor:  ruleAlwaysImpossible,

	types.PaymentStatusCodeCardGatewayBlock:      bucketRules(ruleBankCardEOM, ruleBankCardEOM, ruleBackoff, ruleBackoff),
	types.PaymentStatusCodeCardIssuerBlock:       ruleAlertThenBackoff,
	types.PaymentStatusCodeCardGenericFail:       ruleAlertThenBackoff,
	types.PaymentStatusCodeCardInvalid:           ruleAlertThenBackoff,
	types.PaymentStatusCodeCardExpired:           ruleAlertThenBackoff,
	types.PaymentStatusCodeCardIssuerHardDecline: ruleAlertThenBackoff,
	types.PaymentStatusCodeFraudulent:            ruleAlertThenBackoff,

	types.PaymentStatusCodeNSF:        ruleBankCardLadder,
	types.PaymentStatusCodeRetryLater: ruleBankCardLadder,

	types.PaymentStatusCodeEFTIssuerBlock:   ruleAlwaysImpossible,
	types.PaymentStatusCodeEFTInvalidInfo:   ruleAlwaysImpossible,
	types.PaymentStatusCodeEFTAccountClosed: ruleAlwaysImpossible,
	types.PaymentStatusCodeEFTGenericFail:   ruleAlwaysImpossible,
	types.PaymentStatusCodeEFTNSF:           ruleAlwaysImpossible,
}

var (
	// forceBackoffCodes stop their Friday-EOM reschedules once a chain has retried too often
	forceBackoffCodes = []types.PaymentStatusCode{
		types.PaymentStatusCodeNoRemainingBankCardProcessor,
		types.PaymentStatusCodeNSF,
		types.PaymentStatusCodeRetryLater,
	}

	// provider1ExclusionCodes are failures historically tied to provider 1
	provider1ExclusionCodes = []types.PaymentStatusCode{
		types.PaymentStatusCodeExternalFailure,
		types.PaymentStatusCodeNoRemainingBankCardProcessor,
		types.PaymentStatusCodeCardGatewayBlock,
		types.PaymentStatusCodeNSF,
		types.PaymentStatusCodeRetryLater,
	}
)

func shouldForceBackoff(code types.PaymentStatusCode, bucket types.AgingBucket, totalRetryCnt int) bool {
	return bucket == types.AgingBucket61To180 &&
		totalRetryCnt > forceBackoffRetryCount &&
		lo.Contains(forceBackoffCodes, code)
}

func shouldExcludeProvider1(code types.PaymentStatusCode, bucket types.AgingBucket, totalRetryCnt int) bool {
	return bucket == types.AgingBucket31To60 &&
		totalRetryCnt > provider1ExclusionRetryCount &&
		lo.Contains(provider1ExclusionCodes, code)
}

// ResolveRetryDecision maps a failure code, how overdue the payment is and how
// many retries the chain already made to a retry decision. It returns an error
// marked ErrRetryNotPossible when the failure has no retry path at all.
func ResolveRetryDecision(code types.PaymentStatusCode, daysOverdue int, totalRetryCnt int) (*RetryDecision, error) {
	bucket := types.AgingBucketFor(daysOverdue)

	rule := ruleBackoff
	if byBucket, ok := retryRules[code]; ok {
		rule = byBucket[bucket]
	}

	if shouldForceBackoff(code, bucket, totalRetryCnt) {
		rule = ruleBackoff
	}

	patch := types.RoutingContext{}
	if shouldExcludeProvider1(code, bucket, totalRetryCnt) {
		patch = append(patch, types.RoutingContextNoProvider1)
	}

	if rule.action == types.RetryActionNotPossible {
		return nil, ierr.NewErrorf("no retry is possible for status code %d", code).
			WithHintf("Payments failing with %s can not be retried", code).
			WithReportableDetails(map[string]any{
				"code":            code,
				"bucket":          bucket,
				"total_retry_cnt": totalRetryCnt,
			}).
			Mark(ierr.ErrRetryNotPossible)
	}

	return &RetryDecision{
		Action:          rule.action,
		Track:           rule.track,
		Code:            code,
		Bucket:          bucket,
		TotalRetryCnt:   totalRetryCnt,
		RoutingCtxPatch: patch,
	}, nil
}
