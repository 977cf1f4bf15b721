package clinic

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// SaveNewPatient registers an active patient with no sessions yet.
func (s *Service) SaveNewPatient(ctx context.Context, in NewPatientInput) (Patient, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Patient{}, s.invalid(ctx, ErrPatientNameRequired)
	}

	var created Patient
	err := s.mutate(ctx, "save patient", func(d *Dataset) (Changeset, error) {
		created = Patient{
			ID:              s.ids.next("patient-"),
			Name:            name,
			Email:           strings.TrimSpace(in.Email),
			Phone:           strings.TrimSpace(in.Phone),
			Status:          PatientActive,
			StartDate:       s.Now().Truncate(time.Millisecond),
			TotalSessions:   0,
			NextAppointment: nil,
			Notes:           in.Notes,
		}
		d.Patients = append(d.Patients, created)
		return Changeset(CollectionPatients), nil
	})
	if err != nil {
		return Patient{}, err
	}

	s.notify(ctx, NotifyInfo, "", fmt.Sprintf("%s was added.", created.Name))
	return created, nil
}

// UpdatePatient replaces the stored record with p. Callers carry forward
// any field they did not edit.
func (s *Service) UpdatePatient(ctx context.Context, p Patient) (Patient, error) {
	if !p.Status.Valid() {
		return Patient{}, s.invalid(ctx, ErrInvalidStatus)
	}

	err := s.mutate(ctx, "update patient", func(d *Dataset) (Changeset, error) {
		idx := d.patientIndex(p.ID)
		if idx < 0 {
			return 0, ErrPatientNotFound
		}
		d.Patients[idx] = p
		return Changeset(CollectionPatients), nil
	})
	if err != nil {
		return Patient{}, err
	}

	s.notify(ctx, NotifyInfo, "Patient updated", fmt.Sprintf("%s was updated.", p.Name))
	return p, nil
}

// UpdateMedicalNotes overwrites the patient's notes. No history is kept.
func (s *Service) UpdateMedicalNotes(ctx context.Context, id, notes string) (Patient, error) {
	p, err := s.updatePatientField(ctx, "update notes", id, func(p *Patient) {
		p.Notes = notes
	})
	if err != nil {
		return Patient{}, err
	}
	s.notify(ctx, NotifyInfo, "Medical record saved", fmt.Sprintf("Notes for %s were saved.", p.Name))
	return p, nil
}

func (s *Service) SetPatientStatus(ctx context.Context, id string, status PatientStatus) (Patient, error) {
	if !status.Valid() {
		return Patient{}, s.invalid(ctx, ErrInvalidStatus)
	}
	p, err := s.updatePatientField(ctx, "set patient status", id, func(p *Patient) {
		p.Status = status
	})
	if err != nil {
		return Patient{}, err
	}
	s.notify(ctx, NotifyInfo, "Patient updated", fmt.Sprintf("%s is now %s.", p.Name, status))
	return p, nil
}

func (s *Service) updatePatientField(ctx context.Context, op, id string, fn func(p *Patient)) (Patient, error) {
	var updated Patient
	err := s.mutate(ctx, op, func(d *Dataset) (Changeset, error) {
		idx := d.patientIndex(id)
		if idx < 0 {
			return 0, ErrPatientNotFound
		}
		fn(&d.Patients[idx])
		updated = d.Patients[idx]
		return Changeset(CollectionPatients), nil
	})
	return updated, err
}

func (s *Service) GetPatient(id string) (Patient, error) {
	var (
		p   Patient
		err = ErrPatientNotFound
	)
	s.read(func(d *Dataset) {
		if idx := d.patientIndex(id); idx >= 0 {
			p, err = d.Patients[idx], nil
		}
	})
	return p, err
}

// ListPatients returns patients whose name, email or notes contain query,
// ignoring case. An empty query matches everyone.
func (s *Service) ListPatients(query string) []Patient {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Patient
	s.read(func(d *Dataset) {
		for _, p := range d.Patients {
			if q == "" ||
				strings.Contains(strings.ToLower(p.Name), q) ||
				strings.Contains(strings.ToLower(p.Email), q) ||
				strings.Contains(strings.ToLower(p.Notes), q) {
				out = append(out, p)
			}
		}
	})
	return out
}

// PatientAppointments lists the patient's appointments, earliest first.
func (s *Service) PatientAppointments(patientID string) []Appointment {
	var out []Appointment
	s.read(func(d *Dataset) {
		for _, a := range d.Appointments {
			if a.PatientID == patientID {
				out = append(out, a)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
