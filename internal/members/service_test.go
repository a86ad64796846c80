package members

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/rs/zerolog"
)

type fakeMemberships struct {
	byID map[string]models.Membership
}

func (f *fakeMemberships) CreateMembership(ctx context.Context, userID, orgID string, role models.Role, isOrgCreator bool) (models.Membership, error) {
	return models.Membership{}, errors.New("not implemented")
}

func (f *fakeMemberships) GetMembershipByUserID(ctx context.Context, userID string) (models.Membership, error) {
	for _, m := range f.byID {
		if m.UserID == userID {
			return m, nil
		}
	}
	return models.Membership{}, sql.ErrNoRows
}

func (f *fakeMemberships) GetMembershipByID(ctx context.Context, id string) (models.Membership, error) {
	m, ok := f.byID[id]
	if !ok {
		return models.Membership{}, sql.ErrNoRows
	}
	return m, nil
}

func (f *fakeMemberships) ListMembershipsByOrganization(ctx context.Context, orgID string) ([]models.Membership, error) {
	var out []models.Membership
	for _, m := range f.byID {
		if m.OrganizationID == orgID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMemberships) CountManagementMembers(ctx context.Context, orgID string) (int, error) {
	count := 0
	for _, m := range f.byID {
		if m.OrganizationID == orgID && m.Role == models.RoleManagement {
			count++
		}
	}
	return count, nil
}

func (f *fakeMemberships) UpdateMembershipRole(ctx context.Context, id string, role models.Role) (models.Membership, error) {
	m, ok := f.byID[id]
	if !ok {
		return models.Membership{}, sql.ErrNoRows
	}
	m.Role = role
	f.byID[id] = m
	return m, nil
}

func (f *fakeMemberships) DeleteMembership(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

type noopRecorder struct{}

func (noopRecorder) Record(ctx context.Context, orgID, userID, actionType, description string, metadata map[string]interface{}) {
}

func fixture() (*Service, *fakeMemberships) {
	repo := &fakeMemberships{byID: map[string]models.Membership{
		"mem-creator": {ID: "mem-creator", UserID: "u-creator", OrganizationID: "org-1", Role: models.RoleManagement, IsOrgCreator: true},
		"mem-mgr":     {ID: "mem-mgr", UserID: "u-mgr", OrganizationID: "org-1", Role: models.RoleManagement},
		"mem-emp":     {ID: "mem-emp", UserID: "u-emp", OrganizationID: "org-1", Role: models.RoleEmployee},
		"mem-other":   {ID: "mem-other", UserID: "u-other", OrganizationID: "org-2", Role: models.RoleManagement, IsOrgCreator: true},
	}}
	return NewService(repo, noopRecorder{}, zerolog.Nop()), repo
}

func TestUpdateRolePromotesEmployee(t *testing.T) {
	svc, repo := fixture()

	updated, err := svc.UpdateRole(context.Background(), "org-1", "mem-emp", models.RoleManagement, "u-creator")
	if err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if updated.Role != models.RoleManagement {
		t.Errorf("role = %q, want management", updated.Role)
	}
	if repo.byID["mem-emp"].Role != models.RoleManagement {
		t.Error("role not persisted")
	}
}

func TestUpdateRoleProtectsCreator(t *testing.T) {
	svc, _ := fixture()

	_, err := svc.UpdateRole(context.Background(), "org-1", "mem-creator", models.RoleEmployee, "u-mgr")
	if !models.IsKind(err, models.KindCreatorRoleProtected) {
		t.Fatalf("UpdateRole = %v, want KindCreatorRoleProtected", err)
	}
}

func TestUpdateRoleDemotionWithCoverage(t *testing.T) {
	svc, _ := fixture()

	// Two management members exist, so one non-creator may step down.
	updated, err := svc.UpdateRole(context.Background(), "org-1", "mem-mgr", models.RoleEmployee, "u-creator")
	if err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if updated.Role != models.RoleEmployee {
		t.Errorf("role = %q, want employee", updated.Role)
	}
}

func TestUpdateRoleBlocksLastManagement(t *testing.T) {
	svc, repo := fixture()

	// Leave org-1 with a single non-creator management member.
	delete(repo.byID, "mem-creator")

	_, err := svc.UpdateRole(context.Background(), "org-1", "mem-mgr", models.RoleEmployee, "u-mgr")
	if !models.IsKind(err, models.KindLastManagementUser) {
		t.Fatalf("UpdateRole = %v, want KindLastManagementUser", err)
	}
}

func TestUpdateRoleSameRoleIsNoOp(t *testing.T) {
	svc, _ := fixture()

	// Re-asserting the creator's current role is not a demotion.
	m, err := svc.UpdateRole(context.Background(), "org-1", "mem-creator", models.RoleManagement, "u-mgr")
	if err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if m.Role != models.RoleManagement {
		t.Errorf("role = %q", m.Role)
	}
}

func TestUpdateRoleHidesForeignMemberships(t *testing.T) {
	svc, _ := fixture()

	_, err := svc.UpdateRole(context.Background(), "org-1", "mem-other", models.RoleEmployee, "u-mgr")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("cross-tenant UpdateRole = %v, want sql.ErrNoRows", err)
	}
	_, err = svc.UpdateRole(context.Background(), "org-1", "mem-missing", models.RoleEmployee, "u-mgr")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("missing UpdateRole = %v, want sql.ErrNoRows", err)
	}
}

func TestRemoveEmployee(t *testing.T) {
	svc, repo := fixture()

	if err := svc.Remove(context.Background(), "org-1", "mem-emp", "u-mgr"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := repo.byID["mem-emp"]; ok {
		t.Error("membership not deleted")
	}
}

func TestRemoveProtectsCreatorAndLastManagement(t *testing.T) {
	svc, repo := fixture()

	if err := svc.Remove(context.Background(), "org-1", "mem-creator", "u-mgr"); !models.IsKind(err, models.KindCreatorRoleProtected) {
		t.Fatalf("remove creator = %v, want KindCreatorRoleProtected", err)
	}

	delete(repo.byID, "mem-creator")
	if err := svc.Remove(context.Background(), "org-1", "mem-mgr", "u-mgr"); !models.IsKind(err, models.KindLastManagementUser) {
		t.Fatalf("remove last management = %v, want KindLastManagementUser", err)
	}
}
