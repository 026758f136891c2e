package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonaccess/plategate/internal/plategate/service"
	"github.com/carbonaccess/plategate/internal/plategate/types"
)

func TestRegisterEmployee(t *testing.T) {
	env := newTestEnv(t, service.DefaultAccessPolicy())
	ctx := context.Background()

	e, err := env.registry.RegisterEmployee(ctx, service.EmployeeInput{
		Name: "  Jane Doe ", Role: types.RoleManager, TagID: "T1", Photo: platePhoto(t),
	})
	require.NoError(t, err)
	assert.NotZero(t, e.ID)
	assert.Equal(t, "Jane Doe", e.Name)
	assert.True(t, e.Active)
	require.NotNil(t, e.TagID)
	assert.Equal(t, "T1", *e.TagID)
}

func TestRegisterEmployee_DuplicateTag(t *testing.T) {
	env := newTestEnv(t, service.DefaultAccessPolicy())
	ctx := context.Background()

	_, err := env.registry.RegisterEmployee(ctx, service.EmployeeInput{Name: "Jane", Role: "Manager", TagID: "T1"})
	require.NoError(t, err)

	_, err = env.registry.RegisterEmployee(ctx, service.EmployeeInput{Name: "John", Role: "Analyst", TagID: "T1"})
	assert.ErrorIs(t, err, service.ErrDuplicateTagID)

	all, err := env.registry.ListEmployees(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRegisterEmployee_Validation(t *testing.T) {
	env := newTestEnv(t, service.DefaultAccessPolicy())

	_, err := env.registry.RegisterEmployee(context.Background(), service.EmployeeInput{Name: " "})
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, []string{"name is required", "role is required"}, verr.Fields)
}

func TestRegisterEmployee_RejectsNonImagePhoto(t *testing.T) {
	env := newTestEnv(t, service.DefaultAccessPolicy())

	_, err := env.registry.RegisterEmployee(context.Background(), service.EmployeeInput{
		Name: "Jane", Role: "Manager", Photo: []byte("not a picture"),
	})
	assert.ErrorIs(t, err, service.ErrInvalidPhoto)
}

func TestRegisterVehicle(t *testing.T) {
	env := newTestEnv(t, service.DefaultAccessPolicy())
	ctx := context.Background()

	v, err := env.registry.RegisterVehicle(ctx, service.VehicleInput{
		Plate: "xyz-9a88", Model: "Onix", Brand: "Chevrolet", Color: "White", Category: "Visitor",
	})
	require.NoError(t, err)
	assert.Equal(t, "XYZ9A88", v.Plate)
	assert.Equal(t, types.CategoryVisitor, v.Category)
	assert.Nil(t, v.OwnerID)
}

func TestRegisterVehicle_Rejections(t *testing.T) {
	env := newTestEnv(t, service.DefaultAccessPolicy())
	ctx := context.Background()
	missing := int64(12)

	tests := []struct {
		name string
		in   service.VehicleInput
		want error
	}{
		{"empty plate", service.VehicleInput{Plate: " - ", Category: "Visitor"}, service.ErrEmptyPlate},
		{"bad plate", service.VehicleInput{Plate: "AB12345", Category: "Visitor"}, service.ErrInvalidPlateFormat},
		{"bad category", service.VehicleInput{Plate: "ABC1D23", Category: "Intern"}, service.ErrInvalidCategory},
		{"unknown owner", service.VehicleInput{Plate: "ABC1D23", Category: "Employee", OwnerID: &missing}, service.ErrUnknownEmployee},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.registry.RegisterVehicle(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	vehicles, err := env.registry.ListVehicles(ctx)
	require.NoError(t, err)
	assert.Empty(t, vehicles)
}

func TestRegisterVehicle_DuplicateLeavesRegistryUnchanged(t *testing.T) {
	env := newTestEnv(t, service.DefaultAccessPolicy())
	ctx := context.Background()

	_, err := env.registry.RegisterVehicle(ctx, service.VehicleInput{Plate: "ABC1D23", Category: "Employee"})
	require.NoError(t, err)

	before, err := env.registry.ListVehicles(ctx)
	require.NoError(t, err)

	_, err = env.registry.RegisterVehicle(ctx, service.VehicleInput{Plate: "abc1d23", Category: "Visitor"})
	assert.ErrorIs(t, err, service.ErrDuplicatePlate)

	after, err := env.registry.ListVehicles(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLookupVehicle_Idempotent(t *testing.T) {
	env := newTestEnv(t, service.DefaultAccessPolicy())
	ctx := context.Background()

	_, err := env.registry.RegisterVehicle(ctx, service.VehicleInput{Plate: "ABC1D23", Category: "Employee"})
	require.NoError(t, err)

	a, okA, errA := env.registry.LookupVehicle(ctx, "ABC1D23")
	b, okB, errB := env.registry.LookupVehicle(ctx, "ABC1D23")
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.True(t, okA)
	assert.Equal(t, okA, okB)
	assert.Equal(t, a, b)

	_, _, err = env.registry.LookupVehicle(ctx, "")
	assert.ErrorIs(t, err, service.ErrEmptyPlate)
}

func TestDeactivateEmployee_VehicleStillResolves(t *testing.T) {
	env := newTestEnv(t, service.DefaultAccessPolicy())
	ctx := context.Background()

	jane, err := env.registry.RegisterEmployee(ctx, service.EmployeeInput{Name: "Jane", Role: "Manager"})
	require.NoError(t, err)
	_, err = env.registry.RegisterVehicle(ctx, service.VehicleInput{Plate: "XYZ9A88", Category: "Manager", OwnerID: &jane.ID})
	require.NoError(t, err)

	require.NoError(t, env.registry.DeactivateEmployee(ctx, jane.ID))
	got, err := env.registry.GetEmployee(ctx, jane.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	_, err = env.registry.GetEmployee(ctx, 999)
	assert.ErrorIs(t, err, service.ErrUnknownEmployee)

	assert.ErrorIs(t, env.registry.DeactivateEmployee(ctx, 999), service.ErrUnknownEmployee)

	active, err := env.registry.ListEmployees(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	res, err := env.access.CheckPlate(ctx, "XYZ9A88")
	require.NoError(t, err)
	assert.Equal(t, types.StatusAllowed, res.Status)
}
