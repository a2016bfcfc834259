package domain

// compatibility: получатель -> допустимые группы доноров.
// Таблица фиксирована и рефлексивна.
var compatibility = [...][]BloodType{
	APositive:  {APositive, ANegative, OPositive, ONegative},
	ANegative:  {ANegative, ONegative},
	BPositive:  {BPositive, BNegative, OPositive, ONegative},
	BNegative:  {BNegative, ONegative},
	ABPositive: {APositive, ANegative, BPositive, BNegative, ABPositive, ABNegative, OPositive, ONegative},
	ABNegative: {ANegative, BNegative, ABNegative, ONegative},
	OPositive:  {OPositive, ONegative},
	ONegative:  {ONegative},
}

// AcceptableDonorTypes возвращает копию списка групп, которые может принять
// получатель. Для значений вне перечисления возвращает nil.
func AcceptableDonorTypes(recipient BloodType) []BloodType {
	if !recipient.Valid() {
		return nil
	}
	src := compatibility[recipient]
	out := make([]BloodType, len(src))
	copy(out, src)
	return out
}

// CanReceive проверяет совместимость пары донор/получатель
func CanReceive(recipient, donor BloodType) bool {
	if !recipient.Valid() {
		return false
	}
	for _, bt := range compatibility[recipient] {
		if bt == donor {
			return true
		}
	}
	return false
}
