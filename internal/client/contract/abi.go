package contract

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed abi.json
var abiJSON string

var (
	parsedOnce sync.Once
	parsedABI  abi.ABI
	parseErr   error
)

// ABI returns the parsed contract ABI. The JSON is compiled into the binary,
// so an error here means the embedded file is broken.
func ABI() (abi.ABI, error) {
	parsedOnce.Do(func() {
		parsedABI, parseErr = abi.JSON(strings.NewReader(abiJSON))
	})
	return parsedABI, parseErr
}

// ReadFunc identifies one of the view functions aggregated into a snapshot.
type ReadFunc int

// The order matches the batch layout: index 0 is the new-user check, index 1
// the profile name.
const (
	ReadIsNewUser ReadFunc = iota
	ReadName
	ReadIsActive
	ReadTotalDeposit
	ReadNominees
	ReadLastCheckIn
	ReadInactivityPeriod
	ReadInheritances
)

// ReadFuncs lists every read in batch order.
var ReadFuncs = []ReadFunc{
	ReadIsNewUser,
	ReadName,
	ReadIsActive,
	ReadTotalDeposit,
	ReadNominees,
	ReadLastCheckIn,
	ReadInactivityPeriod,
	ReadInheritances,
}

var readMethods = [...]string{
	ReadIsNewUser:        "isNewUser",
	ReadName:             "getName",
	ReadIsActive:         "isActive",
	ReadTotalDeposit:     "getTotalDepositAmount",
	ReadNominees:         "getNomineesDetails",
	ReadLastCheckIn:      "getLastCheckInTime",
	ReadInactivityPeriod: "getInactivityThresholdPeriod",
	ReadInheritances:     "getIncomingInheritanceDetails",
}

// Method returns the contract function name.
func (f ReadFunc) Method() string {
	if f < 0 || int(f) >= len(readMethods) {
		return "unknown"
	}
	return readMethods[f]
}

func (f ReadFunc) String() string { return f.Method() }

// Write function names.
const (
	MethodDeposit             = "deposit"
	MethodWithdraw            = "withdraw"
	MethodResetName           = "resetName"
	MethodSetInactivityPeriod = "setInactivityPeriod"
	MethodUpdateNominees      = "updateNominees"
	MethodClaimInheritance    = "claimInheritance"
	MethodIAmAlive            = "iAmAlive"
)
