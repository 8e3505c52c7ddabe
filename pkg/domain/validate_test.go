package domain

import (
	"errors"
	"strings"
	"testing"
)

func validStrain() Strain {
	return Strain{
		Name:                    "Aspergillus A1",
		ScientificName:          "Aspergillus niger",
		Kind:                    "fungus",
		Source:                  "soil",
		PreservationMethod:      "glycerol",
		PreservationTemperature: "-80C",
		Location:                "Freezer 2",
	}
}

func TestValidateStrainRequiredFields(t *testing.T) {
	if err := Validate(EntityStrain, validStrain()); err != nil {
		t.Fatalf("expected valid strain, got %v", err)
	}
	s := validStrain()
	s.Name = ""
	s.Location = ""
	err := Validate(EntityStrain, s)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %+v", verr.Fields)
	}
	if verr.Fields[0].Field != "name" || verr.Fields[1].Field != "location" {
		t.Fatalf("expected json field names, got %+v", verr.Fields)
	}
}

func TestValidateDutySchedule(t *testing.T) {
	d := DutySchedule{Date: "2024-03-07", Members: []string{"Alice"}, Tasks: []string{"floor"}, Status: DutyPending}
	if err := Validate(EntityDuty, d); err != nil {
		t.Fatalf("expected valid duty, got %v", err)
	}
	d.Members = nil
	if err := Validate(EntityDuty, d); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected empty members to fail, got %v", err)
	}
	d.Members = []string{"Alice"}
	d.Date = "07/03/2024"
	err := Validate(EntityDuty, d)
	if err == nil || !strings.Contains(err.Error(), "date") {
		t.Fatalf("expected malformed date to fail, got %v", err)
	}
	d.Date = "2024-03-07"
	d.Status = "done"
	if err := Validate(EntityDuty, d); err == nil {
		t.Fatalf("expected unknown status to fail")
	}
}

func TestValidateMediumNeedsStrains(t *testing.T) {
	m := Medium{Name: "PDA", Kind: MediumSolid}
	if err := Validate(EntityMedium, m); err == nil {
		t.Fatalf("expected missing strains to fail")
	}
	m.SuitableStrainIDs = []string{"s1"}
	if err := Validate(EntityMedium, m); err != nil {
		t.Fatalf("expected valid medium, got %v", err)
	}
	m.Kind = "gel"
	if err := Validate(EntityMedium, m); err == nil {
		t.Fatalf("expected unknown kind to fail")
	}
}

func TestValidateTransferReminderInterval(t *testing.T) {
	s := validStrain()
	s.TransferReminder = &TransferReminder{Enabled: true}
	if err := Validate(EntityStrain, s); err == nil {
		t.Fatalf("expected enabled reminder without interval to fail")
	}
	s.TransferReminder.IntervalDays = 30
	if err := Validate(EntityStrain, s); err != nil {
		t.Fatalf("expected reminder to pass, got %v", err)
	}
}
