package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/carelink-tw/med-reminder/backend/internal/domain"
)

// CreateMedication 在一个事务内写入药品、规范时间表、触发表达式和全部服药事件
// 排程是创建时一次算好的，之后只读
func (r *Repository) CreateMedication(medication *domain.Medication, events []domain.DoseEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO medications (patient_id, name, dosage, doses_per_day, timing_plan, treatment_days, first_dose_at, timezone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`
	args := []any{
		medication.PatientID,
		medication.Name,
		medication.Dosage,
		medication.DosesPerDay,
		medication.TimingPlan,
		medication.TreatmentDays,
		medication.FirstDoseAt,
		medication.Timezone,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&medication.ID, &medication.CreatedAt, &medication.Version); err != nil {
		return err
	}

	for i, slotTime := range medication.SlotTimes {
		query = `
			INSERT INTO medication_slot_times (medication_id, slot_index, slot_time)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, medication.ID, i, slotTime); err != nil {
			return err
		}
	}

	for _, spec := range medication.TriggerSpecs {
		query = `
			INSERT INTO medication_trigger_specs (medication_id, spec)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, medication.ID, spec); err != nil {
			return err
		}
	}

	for i := range events {
		query = `
			INSERT INTO medication_dose_events (medication_id, dose_time, day_index, is_first_dose, label)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		params := []any{medication.ID, events[i].DoseTime, events[i].DayIndex, events[i].IsFirstDose, events[i].Label}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(&events[i].ID); err != nil {
			return err
		}
		events[i].MedicationID = medication.ID
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetMedicationByID(id int64) (*domain.Medication, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			m.patient_id,
			m.name,
			m.dosage,
			m.doses_per_day,
			m.timing_plan,
			m.treatment_days,
			m.first_dose_at,
			m.timezone,
			m.created_at,
			m.version,
			mst.slot_time,
			mts.spec
		FROM medications m
		LEFT JOIN medication_slot_times mst ON m.id = mst.medication_id
		LEFT JOIN medication_trigger_specs mts ON m.id = mts.medication_id
		WHERE m.id = $1
		ORDER BY mst.slot_index
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	medication := &domain.Medication{
		ID: id,
	}
	slotTimes := make([]string, 0)
	specSet := make(map[string]struct{})
	specs := make([]string, 0)
	found := false

	for rows.Next() {
		var row struct {
			SlotTime sql.NullString
			Spec     sql.NullString
		}

		dst := []any{
			&medication.PatientID,
			&medication.Name,
			&medication.Dosage,
			&medication.DosesPerDay,
			&medication.TimingPlan,
			&medication.TreatmentDays,
			&medication.FirstDoseAt,
			&medication.Timezone,
			&medication.CreatedAt,
			&medication.Version,
			&row.SlotTime,
			&row.Spec,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		found = true

		// 两个 LEFT JOIN 会产生笛卡尔积，这里对时间和表达式分别去重
		if row.SlotTime.Valid {
			if len(slotTimes) == 0 || slotTimes[len(slotTimes)-1] != row.SlotTime.String {
				slotTimes = append(slotTimes, row.SlotTime.String)
			}
		}
		if row.Spec.Valid {
			if _, exists := specSet[row.Spec.String]; !exists {
				specSet[row.Spec.String] = struct{}{}
				specs = append(specs, row.Spec.String)
			}
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !found {
		return nil, sql.ErrNoRows
	}

	medication.SlotTimes = slotTimes
	medication.TriggerSpecs = specs
	if medication.TimingPlan == "custom" {
		// 自定义方案的输入时间解析后就是规范时间表本身
		medication.CustomTimes = slotTimes
	}

	return medication, nil
}

func (r *Repository) GetMedicationsByPatient(patientID int64) ([]*domain.Medication, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id FROM medications WHERE patient_id = $1 ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	medications := make([]*domain.Medication, 0, len(ids))
	for _, id := range ids {
		medication, err := r.GetMedicationByID(id)
		if err != nil {
			return nil, err
		}
		medications = append(medications, medication)
	}

	return medications, nil
}

func (r *Repository) GetMedicationDoseEvents(medicationID int64) ([]domain.DoseEvent, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, dose_time, day_index, is_first_dose, label
		FROM medication_dose_events
		WHERE medication_id = $1
		ORDER BY dose_time
	`

	rows, err := r.dbpool.QueryContext(ctx, query, medicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.DoseEvent, 0)
	for rows.Next() {
		event := domain.DoseEvent{
			MedicationID: medicationID,
		}
		dst := []any{&event.ID, &event.DoseTime, &event.DayIndex, &event.IsFirstDose, &event.Label}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *Repository) DeleteMedication(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	// 时间表、触发表达式和服药事件由外键级联删除
	query := `
		DELETE FROM medications WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
