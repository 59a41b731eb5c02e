package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/teris-io/shortid"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex pay_01HZX3J8Q6V0PZ4W3C1V3C9R2M
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

var (
	sidGenerator *shortid.Shortid
	once         sync.Once
)

func initializeSID() {
	var err error
	sidGenerator, err = shortid.New(1, shortid.DefaultABC, 2342)
	if err != nil {
		panic("failed to initialize shortid generator: " + err.Error())
	}
}

// GenerateShortIDWithPrefix returns a short ID with a prefix.
// Total length is capped at 16 characters, e.g., `PROVIDER1-XYZ12A`.
func GenerateShortIDWithPrefix(prefix string) string {
	once.Do(initializeSID)

	id, err := sidGenerator.Generate()
	if err != nil {
		return ""
	}
	id = strings.ReplaceAll(id, "-", "")

	availableLen := 16 - len(prefix)
	if availableLen <= 0 {
		return ""
	}

	if len(id) > availableLen {
		id = id[:availableLen]
	}

	return strings.ToUpper(fmt.Sprintf("%s%s", prefix, id))
}

const (
	UUID_PREFIX_PAYMENT                  = "pay"
	UUID_PREFIX_PAYMENT_METHOD           = "pm"
	UUID_PREFIX_PAYMENT_METHOD_PROCESSOR = "pmp"
	UUID_PREFIX_SUBSCRIPTION             = "subs"
	UUID_PREFIX_BILLING_CYCLE            = "bc"
	UUID_PREFIX_CUSTOMER_ACCOUNT         = "acct"
	UUID_PREFIX_EVENT                    = "event"
	UUID_PREFIX_AGING_RUN                = "aging"
	UUID_PREFIX_PAYMENT_RUN              = "payrun"
)
