package domain

// ReminderMessage 是 API 与提醒 worker 之间经由消息队列传递的信封
type ReminderMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ChangeEmailMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

// RegisterTriggersData 让 worker 按 cron 表达式注册每日服药提醒
type RegisterTriggersData struct {
	MedicationID   int64    `json:"medicationID"`
	MedicationName string   `json:"medicationName"`
	PatientName    string   `json:"patientName"`
	Dosage         string   `json:"dosage"`
	Timezone       string   `json:"timezone"`
	CronSpecs      []string `json:"cronSpecs"`
}

// RemoveTriggersData 让 worker 撤销某个药品的全部提醒
type RemoveTriggersData struct {
	MedicationID int64 `json:"medicationID"`
}
