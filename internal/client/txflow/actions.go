package txflow

// Action names a write surface: its notification id and success text.
type Action struct {
	Name           string `validate:"required"`
	NotifyID       string `validate:"required"`
	SuccessMessage string `validate:"required"`
}

var (
	ActionSetup = Action{
		Name:           "setup",
		NotifyID:       "txn",
		SuccessMessage: "Name set successfully!",
	}
	ActionDeposit = Action{
		Name:           "deposit",
		NotifyID:       "deposit",
		SuccessMessage: "Deposit successful. Funds have been added to your will.",
	}
	ActionWithdraw = Action{
		Name:           "withdraw",
		NotifyID:       "withdraw",
		SuccessMessage: "Withdrawal successful. Funds have been sent to your wallet.",
	}
	ActionClaim = Action{
		Name:           "claim",
		NotifyID:       "claim",
		SuccessMessage: "Inheritance claim successful. The amount has been transferred to your wallet.",
	}
	ActionRename = Action{
		Name:           "rename",
		NotifyID:       "resetName",
		SuccessMessage: "Transaction successful. Your name has been updated.",
	}
	ActionPeriod = Action{
		Name:           "period",
		NotifyID:       "setTime",
		SuccessMessage: "Transaction successful. Your inactivity period has been reset.",
	}
	ActionNominees = Action{
		Name:           "nominees",
		NotifyID:       "nominee-update",
		SuccessMessage: "Transaction successful. Your Nominee list along with its details has been updated.",
	}
	ActionCheckIn = Action{
		Name:           "alive",
		NotifyID:       "alive",
		SuccessMessage: "Check-in successful! Your status has been updated.",
	}
)
