package types

import (
	"fmt"

	"github.com/samber/lo"
)

// PaymentStatusCode is the normalized outcome of a payment attempt.
//
// Code ranges:
//   - 100-199: processing (async/pending)
//   - 200-299: sent to processor
//   - 440-499: no valid payment method or processor
//   - 600-609: card failures
//   - 610-649: bank/EFT and interac failures
//   - 700-799: payment failures (NSF, disputes, ...)
//   - 800:     success
//   - 900-999: system failures
type PaymentStatusCode int

const (
	PaymentStatusCodeSuccess PaymentStatusCode = 800

	PaymentStatusCodeProcessing             PaymentStatusCode = 100
	PaymentStatusCodeAwaitingFileProcessing PaymentStatusCode = 101
	PaymentStatusCodeFileSentToProcessor    PaymentStatusCode = 102
	PaymentStatusCodeSentToProcessor        PaymentStatusCode = 200

	PaymentStatusCodeNoValidBankCard              PaymentStatusCode = 440
	PaymentStatusCodeNoRemainingBankCardProcessor PaymentStatusCode = 441
	PaymentStatusCodeNoRemainingBankEFTProcessor  PaymentStatusCode = 442
	PaymentStatusCodeNoValidBankEFT               PaymentStatusCode = 443
	PaymentStatusCodeNoValidAnyCard               PaymentStatusCode = 444
	PaymentStatusCodeNoRemainingAnyCardProcessor  PaymentStatusCode = 445
	PaymentStatusCodeNotAttempted                 PaymentStatusCode = 450
	PaymentStatusCodePresumedFailed               PaymentStatusCode = 499

	PaymentStatusCodeCardGatewayBlock      PaymentStatusCode = 601
	PaymentStatusCodeCardIssuerBlock       PaymentStatusCode = 603
	PaymentStatusCodeCardGenericFail       PaymentStatusCode = 604
	PaymentStatusCodeCardInvalid           PaymentStatusCode = 605
	PaymentStatusCodeCardExpired           PaymentStatusCode = 606
	PaymentStatusCodeCardIssuerHardDecline PaymentStatusCode = 607
	PaymentStatusCodeEFTIssuerBlock        PaymentStatusCode = 613
	PaymentStatusCodeEFTInvalidInfo        PaymentStatusCode = 615
	PaymentStatusCodeEFTAccountClosed      PaymentStatusCode = 616
	PaymentStatusCodeInteracGenericFail    PaymentStatusCode = 624
	PaymentStatusCodeInteracInvalidInfo    PaymentStatusCode = 625
	PaymentStatusCodeInteracInvalidDest    PaymentStatusCode = 626
	PaymentStatusCodeInteracANRUnavailable PaymentStatusCode = 627
	PaymentStatusCodeEFTGenericFail        PaymentStatusCode = 640

	PaymentStatusCodeNSF        PaymentStatusCode = 701
	PaymentStatusCodeDisputed   PaymentStatusCode = 703
	PaymentStatusCodeRefunded   PaymentStatusCode = 705
	PaymentStatusCodeRetryLater PaymentStatusCode = 706
	PaymentStatusCodeEFTNSF     PaymentStatusCode = 710
	PaymentStatusCodeFraudulent PaymentStatusCode = 777

	PaymentStatusCodeInternalFailure PaymentStatusCode = 903
	PaymentStatusCodeExternalFailure PaymentStatusCode = 904
)

var paymentStatusCodeNames = map[PaymentStatusCode]string{
	PaymentStatusCodeSuccess:                      "SUCCESS",
	PaymentStatusCodeProcessing:                   "PROCESSING",
	PaymentStatusCodeAwaitingFileProcessing:       "AWAITING_FILE_PROCESSING",
	PaymentStatusCodeFileSentToProcessor:          "FILE_SENT_TO_PROCESSOR",
	PaymentStatusCodeSentToProcessor:              "SENT_TO_PROCESSOR",
	PaymentStatusCodeNoValidBankCard:              "NO_VALID_BANK_CARD",
	PaymentStatusCodeNoRemainingBankCardProcessor: "NO_REMAINING_BANK_CARD_PROCESSOR",
	PaymentStatusCodeNoRemainingBankEFTProcessor:  "NO_REMAINING_BANK_EFT_PROCESSOR",
	PaymentStatusCodeNoValidBankEFT:               "NO_VALID_BANK_EFT",
	PaymentStatusCodeNoValidAnyCard:               "NO_VALID_ANY_CARD",
	PaymentStatusCodeNoRemainingAnyCardProcessor:  "NO_REMAINING_ANY_CARD_PROCESSOR",
	PaymentStatusCodeNotAttempted:                 "NOT_ATTEMPTED",
	PaymentStatusCodePresumedFailed:               "PRESUMED_FAILED",
	PaymentStatusCodeCardGatewayBlock:             "CARD_GATEWAY_BLOCK",
	PaymentStatusCodeCardIssuerBlock:              "CARD_ISSUER_BLOCK",
	PaymentStatusCodeCardGenericFail:              "CARD_GENERIC_FAIL",
	PaymentStatusCodeCardInvalid:                  "CARD_INVALID",
	PaymentStatusCodeCardExpired:                  "CARD_EXPIRED",
	PaymentStatusCodeCardIssuerHardDecline:        "CARD_ISSUER_HARD_DECLINE",
	PaymentStatusCodeEFTIssuerBlock:               "EFT_ISSUER_BLOCK",
	PaymentStatusCodeEFTInvalidInfo:               "EFT_INVALID_INFO",
	PaymentStatusCodeEFTAccountClosed:             "EFT_ACCOUNT_CLOSED",
	PaymentStatusCodeInteracGenericFail:           "INTERAC_GENERIC_FAIL",
	PaymentStatusCodeInteracInvalidInfo:           "INTERAC_INVALID_INFO",
	PaymentStatusCodeInteracInvalidDest:           "INTERAC_INVALID_DEST",
	PaymentStatusCodeInteracANRUnavailable:        "INTERAC_ANR_UNAVAILABLE",
	PaymentStatusCodeEFTGenericFail:               "EFT_GENERIC_FAIL",
	PaymentStatusCodeNSF:                          "NSF",
	PaymentStatusCodeDisputed:                     "DISPUTED",
	PaymentStatusCodeRefunded:                     "REFUNDED",
	PaymentStatusCodeRetryLater:                   "RETRY_LATER",
	PaymentStatusCodeEFTNSF:                       "EFT_NSF",
	PaymentStatusCodeFraudulent:                   "FRAUDULENT",
	PaymentStatusCodeInternalFailure:              "INTERNAL_FAILURE",
	PaymentStatusCodeExternalFailure:              "EXTERNAL_FAILURE",
}

var (
	processingCodes = []PaymentStatusCode{
		PaymentStatusCodeProcessing,
		PaymentStatusCodeAwaitingFileProcessing,
		PaymentStatusCodeFileSentToProcessor,
		PaymentStatusCodeSentToProcessor,
	}

	hardDeclineCodes = []PaymentStatusCode{
		PaymentStatusCodeCardInvalid,
		PaymentStatusCodeCardExpired,
		PaymentStatusCodeCardIssuerHardDecline,
		PaymentStatusCodeEFTIssuerBlock,
		PaymentStatusCodeEFTInvalidInfo,
		PaymentStatusCodeEFTAccountClosed,
		PaymentStatusCodeFraudulent,
	}

	noPaymentMethodCodes = []PaymentStatusCode{
		PaymentStatusCodeNoValidBankCard,
		PaymentStatusCodeNoValidBankEFT,
		PaymentStatusCodeNoValidAnyCard,
		PaymentStatusCodeNoRemainingBankCardProcessor,
		PaymentStatusCodeNoRemainingBankEFTProcessor,
		PaymentStatusCodeNoRemainingAnyCardProcessor,
	}
)

func (c PaymentStatusCode) String() string {
	if name, ok := paymentStatusCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_%d", int(c))
}

// IsKnown reports whether the code is part of the closed taxonomy
func (c PaymentStatusCode) IsKnown() bool {
	_, ok := paymentStatusCodeNames[c]
	return ok
}

// IsSuccess reports a settled, successful attempt
func (c PaymentStatusCode) IsSuccess() bool {
	return c == PaymentStatusCodeSuccess
}

// IsProcessing reports an attempt still in flight with the processor
func (c PaymentStatusCode) IsProcessing() bool {
	return lo.Contains(processingCodes, c)
}

// IsHardDecline reports an outcome after which the same instrument must never be retried
func (c PaymentStatusCode) IsHardDecline() bool {
	return lo.Contains(hardDeclineCodes, c)
}

// IsNoPaymentMethod reports that routing found no usable method or processor
func (c PaymentStatusCode) IsNoPaymentMethod() bool {
	return lo.Contains(noPaymentMethodCodes, c)
}

// IsFailure reports any terminal outcome that is neither success nor in flight
func (c PaymentStatusCode) IsFailure() bool {
	return !c.IsSuccess() && !c.IsProcessing()
}

// NoValidPaymentMethodCode is the outcome recorded when routing finds no method for the track
func NoValidPaymentMethodCode(track PaymentTrack) PaymentStatusCode {
	switch track {
	case PaymentTrackBankCard:
		return PaymentStatusCodeNoValidBankCard
	case PaymentTrackBankEFT:
		return PaymentStatusCodeNoValidBankEFT
	default:
		return PaymentStatusCodeNoValidAnyCard
	}
}

// NoRemainingProcessorCode is the outcome recorded when a method exists but every processor is excluded
func NoRemainingProcessorCode(track PaymentTrack) PaymentStatusCode {
	switch track {
	case PaymentTrackBankCard:
		return PaymentStatusCodeNoRemainingBankCardProcessor
	case PaymentTrackBankEFT:
		return PaymentStatusCodeNoRemainingBankEFTProcessor
	default:
		return PaymentStatusCodeNoRemainingAnyCardProcessor
	}
}
