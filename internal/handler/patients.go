package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/carelink-tw/med-reminder/backend/internal/domain"
)

func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		FullName  string `json:"fullName" validate:"required"`
		BirthDate string `json:"birthDate" validate:"required,datetime=2006-01-02"`
		Notes     string `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	patient := &domain.Patient{
		FullName:  req.FullName,
		BirthDate: req.BirthDate,
		Notes:     req.Notes,
		CreatedBy: myInfo.ID,
	}

	if err := h.repository.CreatePatient(patient); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "病患创建成功", patient)
}

func (h *Handler) GetAllPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.repository.GetAllPatients()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取病患列表成功", patients)
}

func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	patient := r.Context().Value(PatientCtx).(*domain.Patient)
	h.successResponse(w, r, "获取病患信息成功", patient)
}

func (h *Handler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	patient := r.Context().Value(PatientCtx).(*domain.Patient)

	var req struct {
		FullName  *string `json:"fullName"`
		BirthDate *string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
		Notes     *string `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.FullName != nil {
		patient.FullName = *req.FullName
	}
	if req.BirthDate != nil {
		patient.BirthDate = *req.BirthDate
	}
	if req.Notes != nil {
		patient.Notes = *req.Notes
	}

	if err := h.repository.UpdatePatient(patient); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "病患信息已被他人修改，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新病患信息成功", patient)
}

func (h *Handler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	patient := r.Context().Value(PatientCtx).(*domain.Patient)

	if err := h.repository.DeletePatient(patient.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除病患成功", nil)
}
