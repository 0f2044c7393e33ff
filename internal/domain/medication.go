package domain

import (
	"time"
)

// Medication 是一次用药医嘱及其排程参数
// SlotTimes 和 TriggerSpecs 在创建时由排程引擎算出并随行持久化
type Medication struct {
	ID            int64     `json:"id"`
	PatientID     int64     `json:"patientID"`
	Name          string    `json:"name"`
	Dosage        string    `json:"dosage"` // 例如 "1 颗"、"5ml"
	DosesPerDay   int       `json:"dosesPerDay"`
	TimingPlan    string    `json:"timingPlan"`
	CustomTimes   []string  `json:"customTimes,omitempty"`
	TreatmentDays int       `json:"treatmentDays"`
	FirstDoseAt   time.Time `json:"firstDoseAt"`
	Timezone      string    `json:"timezone"` // IANA 时区名
	SlotTimes     []string  `json:"slotTimes"`
	TriggerSpecs  []string  `json:"triggerSpecs"`
	CreatedAt     time.Time `json:"createdAt"`
	Version       int32     `json:"-"`
}

// DoseEvent 是排程引擎生成的一次服药事件的持久化形态
type DoseEvent struct {
	ID           int64     `json:"id"`
	MedicationID int64     `json:"medicationID"`
	DoseTime     time.Time `json:"doseTime"`
	DayIndex     int       `json:"dayIndex"`
	IsFirstDose  bool      `json:"isFirstDose"`
	Label        string    `json:"label"`
}
