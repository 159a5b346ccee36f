package nutri

import "nutri-go/internal/model"

// MaxFreeUses is the number of analyses a FREE user may run per calendar day.
const MaxFreeUses = 3

// CanProceed decides whether the user may start an analysis today.
//
// PRO users are always allowed. A record last used on another day is allowed
// and comes back with its counter reset for today, even though nothing has
// been consumed yet: the increment happens in RecordUsage once a result
// exists. Otherwise a FREE user is allowed while under MaxFreeUses.
func CanProceed(user model.UserRecord, today string) (bool, model.UserRecord) {
	if user.Plan == model.PlanPro {
		return true, user
	}
	if user.LastUsageDate != today {
		return true, RollOver(user, today)
	}
	if user.DailyUsageCount >= MaxFreeUses {
		return false, user
	}
	return true, user
}

// RecordUsage consumes one analysis. Call it only after the inference
// service returned a result; failed analyses are free.
func RecordUsage(user model.UserRecord) model.UserRecord {
	user.DailyUsageCount++
	return user
}

// RollOver applies the date rule alone: a counter recorded for a day other
// than today is reset to zero and re-dated.
func RollOver(user model.UserRecord, today string) model.UserRecord {
	if user.LastUsageDate == today {
		return user
	}
	user.DailyUsageCount = 0
	user.LastUsageDate = today
	return user
}

// RemainingFreeUses reports how many analyses the user has left today.
// unlimited is true for PRO users, in which case remaining is meaningless.
func RemainingFreeUses(user model.UserRecord, today string) (remaining int, unlimited bool) {
	if user.Plan == model.PlanPro {
		return 0, true
	}
	user = RollOver(user, today)
	return max(0, MaxFreeUses-user.DailyUsageCount), false
}
