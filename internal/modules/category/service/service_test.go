package category

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"anadara.com/exportmarket/internal/entity"
	"anadara.com/exportmarket/internal/modules/category/dto"
	"anadara.com/exportmarket/internal/modules/category/repository"
	"anadara.com/exportmarket/pkg/apperror"
)

// fakeCategoryRepo keeps the whole taxonomy in memory and mirrors the SQL
// semantics of the real repository closely enough for service-level tests.
type fakeCategoryRepo struct {
	categories map[uuid.UUID]*entity.Category

	lastSearchLimit int
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[uuid.UUID]*entity.Category)}
}

func (f *fakeCategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	if category.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		category.ID = id
	}
	f.categories[category.ID] = category
	return nil
}

func (f *fakeCategoryRepo) Save(ctx context.Context, category *entity.Category) error {
	f.categories[category.ID] = category
	return nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.categories, id)
	return nil
}

func (f *fakeCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	if c, ok := f.categories[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCategoryRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Category, error) {
	var out []*entity.Category
	for _, id := range ids {
		if c, ok := f.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) FindBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	for _, c := range f.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCategoryRepo) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	for _, c := range f.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCategoryRepo) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	for _, c := range f.categories {
		if c.Slug == slug && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCategoryRepo) FindAll(ctx context.Context, filter repository.Filter) ([]*entity.Category, error) {
	var out []*entity.Category
	for _, c := range f.categories {
		if filter.PublicOnly && (!c.IsActive || !c.IsVisible) {
			continue
		}
		if filter.ActiveOnly && !c.IsActive {
			continue
		}
		if filter.Level != nil && c.Level != *filter.Level {
			continue
		}
		if filter.RootsOnly && c.ParentID != nil {
			continue
		}
		if filter.ParentID != nil && !parentMatches(c, filter.ParentID) {
			continue
		}
		if filter.Featured && !c.IsFeatured {
			continue
		}
		if filter.Homepage && !c.ShowOnHome {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (f *fakeCategoryRepo) FindChildren(ctx context.Context, parentID *uuid.UUID, activeOnly bool) ([]*entity.Category, error) {
	var out []*entity.Category
	for _, c := range f.categories {
		if !parentMatches(c, parentID) {
			continue
		}
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	sortByOrder(out)
	return out, nil
}

func (f *fakeCategoryRepo) FindSiblings(ctx context.Context, parentID *uuid.UUID, excludeID uuid.UUID) ([]*entity.Category, error) {
	var out []*entity.Category
	for _, c := range f.categories {
		if !parentMatches(c, parentID) || c.ID == excludeID {
			continue
		}
		out = append(out, c)
	}
	sortByOrder(out)
	return out, nil
}

func (f *fakeCategoryRepo) FindDescendants(ctx context.Context, path string) ([]*entity.Category, error) {
	var out []*entity.Category
	for _, c := range f.categories {
		if strings.HasPrefix(c.Path, path+"/") {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (f *fakeCategoryRepo) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	for _, c := range f.categories {
		if c.ParentID != nil && *c.ParentID == id {
			count++
		}
	}
	return count, nil
}

func (f *fakeCategoryRepo) CountSiblings(ctx context.Context, parentID *uuid.UUID) (int64, error) {
	var count int64
	for _, c := range f.categories {
		if parentMatches(c, parentID) {
			count++
		}
	}
	return count, nil
}

func (f *fakeCategoryRepo) Search(ctx context.Context, query string, limit int) ([]*entity.Category, error) {
	f.lastSearchLimit = limit
	needle := strings.ToLower(query)

	var out []*entity.Category
	for _, c := range f.categories {
		if !c.IsActive || !c.IsVisible {
			continue
		}
		if strings.Contains(strings.ToLower(c.Name), needle) ||
			strings.Contains(strings.ToLower(c.Description), needle) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCategoryRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.categories)), nil
}

func (f *fakeCategoryRepo) ShiftDisplayOrders(ctx context.Context, parentID *uuid.UUID, min, max, delta int) error {
	for _, c := range f.categories {
		if parentMatches(c, parentID) && c.DisplayOrder >= min && c.DisplayOrder <= max {
			c.DisplayOrder += delta
		}
	}
	return nil
}

func (f *fakeCategoryRepo) SetDisplayOrder(ctx context.Context, id uuid.UUID, order int) error {
	c, ok := f.categories[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.DisplayOrder = order
	return nil
}

func (f *fakeCategoryRepo) RewritePathPrefix(ctx context.Context, oldPath, newPath string, levelDelta int) error {
	for _, c := range f.categories {
		if strings.HasPrefix(c.Path, oldPath+"/") {
			c.Path = newPath + c.Path[len(oldPath):]
			c.Level += levelDelta
		}
	}
	return nil
}

func (f *fakeCategoryRepo) SetProductCount(ctx context.Context, id uuid.UUID, count int) error {
	if c, ok := f.categories[id]; ok {
		c.ProductCount = count
	}
	return nil
}

func (f *fakeCategoryRepo) Transaction(ctx context.Context, fn func(repo repository.CategoryRepository) error) error {
	return fn(f)
}

func parentMatches(c *entity.Category, parentID *uuid.UUID) bool {
	if parentID == nil {
		return c.ParentID == nil
	}
	return c.ParentID != nil && *c.ParentID == *parentID
}

func sortByOrder(categories []*entity.Category) {
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].DisplayOrder != categories[j].DisplayOrder {
			return categories[i].DisplayOrder < categories[j].DisplayOrder
		}
		return categories[i].Name < categories[j].Name
	})
}

type fakeProductCounter struct {
	counts map[uuid.UUID]int64
}

func (f *fakeProductCounter) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	return f.counts[categoryID], nil
}

type fakeSearchIndex struct {
	ids     []uuid.UUID
	err     error
	indexed []uuid.UUID
	removed []uuid.UUID
}

func (f *fakeSearchIndex) IndexCategory(ctx context.Context, category *entity.Category) error {
	f.indexed = append(f.indexed, category.ID)
	return nil
}

func (f *fakeSearchIndex) RemoveCategory(ctx context.Context, id uuid.UUID) error {
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeSearchIndex) SearchCategoryIDs(ctx context.Context, query string, limit int) ([]uuid.UUID, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.ids) {
		return f.ids[:limit], nil
	}
	return f.ids, nil
}

func newTestService(repo *fakeCategoryRepo) CategoryService {
	return NewCategoryService(repo, &fakeProductCounter{counts: map[uuid.UUID]int64{}}, nil, nil)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func mustCreate(t *testing.T, svc CategoryService, name string, parentID *uuid.UUID) *entity.Category {
	t.Helper()
	req := dto.CreateCategoryRequest{Name: name}
	if parentID != nil {
		req.ParentID = strPtr(parentID.String())
	}
	category, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	return category
}

func TestCreateRootCategory(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	category, err := svc.Create(context.Background(), dto.CreateCategoryRequest{
		Name:        "Food & Beverages",
		Description: "Edible exports",
	})
	require.NoError(t, err)

	assert.Equal(t, "food-beverages", category.Slug)
	assert.Equal(t, 0, category.Level)
	assert.Equal(t, "food-beverages", category.Path)
	assert.Equal(t, 0, category.DisplayOrder)
	assert.Nil(t, category.ParentID)
	assert.True(t, category.IsActive)
	assert.True(t, category.IsVisible)
}

func TestCreateChildDerivesLevelAndPath(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	root := mustCreate(t, svc, "Agriculture", nil)
	child := mustCreate(t, svc, "Coffee Tea", &root.ID)
	grandchild := mustCreate(t, svc, "Green Beans", &child.ID)

	assert.Equal(t, 1, child.Level)
	assert.Equal(t, "agriculture/coffee-tea", child.Path)
	assert.Equal(t, 2, grandchild.Level)
	assert.Equal(t, "agriculture/coffee-tea/green-beans", grandchild.Path)
}

func TestCreateAppendsDisplayOrder(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	root := mustCreate(t, svc, "Agriculture", nil)
	a := mustCreate(t, svc, "Alpha", &root.ID)
	b := mustCreate(t, svc, "Beta", &root.ID)
	c := mustCreate(t, svc, "Gamma", &root.ID)

	assert.Equal(t, 0, a.DisplayOrder)
	assert.Equal(t, 1, b.DisplayOrder)
	assert.Equal(t, 2, c.DisplayOrder)
}

func TestCreateAtExplicitOrderShiftsTail(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	a := mustCreate(t, svc, "Alpha", nil)
	b := mustCreate(t, svc, "Beta", nil)

	inserted, err := svc.Create(context.Background(), dto.CreateCategoryRequest{
		Name:         "Gamma",
		DisplayOrder: intPtr(0),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, inserted.DisplayOrder)
	assert.Equal(t, 1, repo.categories[a.ID].DisplayOrder)
	assert.Equal(t, 2, repo.categories[b.ID].DisplayOrder)
}

func TestCreateDuplicateNameConflicts(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	mustCreate(t, svc, "Textiles", nil)

	_, err := svc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Textiles"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestCreateSlugCollisionGetsSuffix(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	first := mustCreate(t, svc, "Coffee & Tea", nil)

	// Different name, same normalized slug.
	second, err := svc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Coffee Tea"})
	require.NoError(t, err)

	assert.Equal(t, "coffee-tea", first.Slug)
	assert.True(t, strings.HasPrefix(second.Slug, "coffee-tea-"))
	assert.NotEqual(t, first.Slug, second.Slug)
}

func TestCreateRejectsUnknownParent(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), dto.CreateCategoryRequest{
		Name:     "Orphan",
		ParentID: strPtr(uuid.NewString()),
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateRejectsEmptySlug(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), dto.CreateCategoryRequest{Name: "!!!"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestRenameRewritesDescendantPaths(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	root := mustCreate(t, svc, "Agriculture", nil)
	child := mustCreate(t, svc, "Coffee Tea", &root.ID)
	grandchild := mustCreate(t, svc, "Green Beans", &child.ID)

	updated, err := svc.Update(context.Background(), root.ID, dto.UpdateCategoryRequest{
		Name: strPtr("Farm Goods"),
	})
	require.NoError(t, err)

	assert.Equal(t, "farm-goods", updated.Slug)
	assert.Equal(t, "farm-goods", updated.Path)
	assert.Equal(t, "farm-goods/coffee-tea", repo.categories[child.ID].Path)
	assert.Equal(t, "farm-goods/coffee-tea/green-beans", repo.categories[grandchild.ID].Path)
	assert.Equal(t, 1, repo.categories[child.ID].Level)
	assert.Equal(t, 2, repo.categories[grandchild.ID].Level)
}

func TestReparentMovesSubtreeAndKeepsOrdersDense(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	agriculture := mustCreate(t, svc, "Agriculture", nil)
	textiles := mustCreate(t, svc, "Textiles", nil)

	coffee := mustCreate(t, svc, "Coffee Tea", &agriculture.ID)
	spices := mustCreate(t, svc, "Spices", &agriculture.ID)
	beans := mustCreate(t, svc, "Green Beans", &coffee.ID)

	fabrics := mustCreate(t, svc, "Fabrics", &textiles.ID)

	moved, err := svc.Update(context.Background(), coffee.ID, dto.UpdateCategoryRequest{
		ParentID: strPtr(textiles.ID.String()),
	})
	require.NoError(t, err)

	assert.Equal(t, textiles.ID, *moved.ParentID)
	assert.Equal(t, 1, moved.Level)
	assert.Equal(t, "textiles/coffee-tea", moved.Path)
	assert.Equal(t, "textiles/coffee-tea/green-beans", repo.categories[beans.ID].Path)
	assert.Equal(t, 2, repo.categories[beans.ID].Level)

	// Old sibling group closed the gap, new group appended at the end.
	assert.Equal(t, 0, repo.categories[spices.ID].DisplayOrder)
	assert.Equal(t, 0, repo.categories[fabrics.ID].DisplayOrder)
	assert.Equal(t, 1, moved.DisplayOrder)
}

func TestReparentToDeeperNodeShiftsLevels(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	agriculture := mustCreate(t, svc, "Agriculture", nil)
	coffee := mustCreate(t, svc, "Coffee Tea", &agriculture.ID)
	beans := mustCreate(t, svc, "Green Beans", &coffee.ID)

	standalone := mustCreate(t, svc, "Specialty", nil)

	moved, err := svc.Update(context.Background(), standalone.ID, dto.UpdateCategoryRequest{
		ParentID: strPtr(beans.ID.String()),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, moved.Level)
	assert.Equal(t, "agriculture/coffee-tea/green-beans/specialty", moved.Path)
}

func TestReparentToRootViaNullLiteral(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	root := mustCreate(t, svc, "Agriculture", nil)
	child := mustCreate(t, svc, "Coffee Tea", &root.ID)

	moved, err := svc.Update(context.Background(), child.ID, dto.UpdateCategoryRequest{
		ParentID: strPtr("null"),
	})
	require.NoError(t, err)

	assert.Nil(t, moved.ParentID)
	assert.Equal(t, 0, moved.Level)
	assert.Equal(t, "coffee-tea", moved.Path)
}

func TestReparentOntoSelfRejected(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	root := mustCreate(t, svc, "Agriculture", nil)

	_, err := svc.Update(context.Background(), root.ID, dto.UpdateCategoryRequest{
		ParentID: strPtr(root.ID.String()),
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidOperation)
}

func TestReparentOntoDescendantRejectedAndTreeUnchanged(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	root := mustCreate(t, svc, "Agriculture", nil)
	child := mustCreate(t, svc, "Coffee Tea", &root.ID)
	grandchild := mustCreate(t, svc, "Green Beans", &child.ID)

	_, err := svc.Update(context.Background(), root.ID, dto.UpdateCategoryRequest{
		ParentID: strPtr(grandchild.ID.String()),
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidOperation)

	assert.Nil(t, repo.categories[root.ID].ParentID)
	assert.Equal(t, "agriculture", repo.categories[root.ID].Path)
	assert.Equal(t, "agriculture/coffee-tea/green-beans", repo.categories[grandchild.ID].Path)
}

func TestDeleteRejectsCategoryWithChildren(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	root := mustCreate(t, svc, "Agriculture", nil)
	mustCreate(t, svc, "Coffee Tea", &root.ID)

	err := svc.Delete(context.Background(), root.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidOperation)
	assert.Contains(t, repo.categories, root.ID)
}

func TestDeleteRejectsCategoryWithProducts(t *testing.T) {
	repo := newFakeCategoryRepo()
	counter := &fakeProductCounter{counts: map[uuid.UUID]int64{}}
	svc := NewCategoryService(repo, counter, nil, nil)

	category, err := svc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Spices"})
	require.NoError(t, err)
	counter.counts[category.ID] = 3

	err = svc.Delete(context.Background(), category.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidOperation)
}

func TestDeleteClosesDisplayOrderGap(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	a := mustCreate(t, svc, "Alpha", nil)
	b := mustCreate(t, svc, "Beta", nil)
	c := mustCreate(t, svc, "Gamma", nil)

	require.NoError(t, svc.Delete(context.Background(), b.ID))

	assert.NotContains(t, repo.categories, b.ID)
	assert.Equal(t, 0, repo.categories[a.ID].DisplayOrder)
	assert.Equal(t, 1, repo.categories[c.ID].DisplayOrder)
}

func TestDeleteMissingCategory(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestReorderMovesDownAndShiftsNeighbors(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	a := mustCreate(t, svc, "Alpha", nil)
	b := mustCreate(t, svc, "Beta", nil)
	c := mustCreate(t, svc, "Gamma", nil)
	d := mustCreate(t, svc, "Delta", nil)

	moved, err := svc.Reorder(context.Background(), b.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, 3, moved.DisplayOrder)
	assert.Equal(t, 0, repo.categories[a.ID].DisplayOrder)
	assert.Equal(t, 1, repo.categories[c.ID].DisplayOrder)
	assert.Equal(t, 2, repo.categories[d.ID].DisplayOrder)
}

func TestReorderMovesUpAndShiftsNeighbors(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	a := mustCreate(t, svc, "Alpha", nil)
	b := mustCreate(t, svc, "Beta", nil)
	c := mustCreate(t, svc, "Gamma", nil)

	moved, err := svc.Reorder(context.Background(), c.ID, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, moved.DisplayOrder)
	assert.Equal(t, 1, repo.categories[a.ID].DisplayOrder)
	assert.Equal(t, 2, repo.categories[b.ID].DisplayOrder)
}

func TestReorderClampsToSiblingRange(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	a := mustCreate(t, svc, "Alpha", nil)
	b := mustCreate(t, svc, "Beta", nil)

	moved, err := svc.Reorder(context.Background(), a.ID, 99)
	require.NoError(t, err)

	assert.Equal(t, 1, moved.DisplayOrder)
	assert.Equal(t, 0, repo.categories[b.ID].DisplayOrder)
}

func TestReorderNoOpWhenOrderUnchanged(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	a := mustCreate(t, svc, "Alpha", nil)
	mustCreate(t, svc, "Beta", nil)

	moved, err := svc.Reorder(context.Background(), a.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, moved.DisplayOrder)
}

func TestBuildTreeNestsByDisplayOrderAndSkipsInactive(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	agriculture := mustCreate(t, svc, "Agriculture", nil)
	textiles := mustCreate(t, svc, "Textiles", nil)
	coffee := mustCreate(t, svc, "Coffee Tea", &agriculture.ID)
	spices := mustCreate(t, svc, "Spices", &agriculture.ID)
	hidden := mustCreate(t, svc, "Hidden", &agriculture.ID)

	_, err := svc.ToggleStatus(context.Background(), hidden.ID)
	require.NoError(t, err)

	tree, err := svc.BuildTree(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, tree, 2)
	assert.Equal(t, agriculture.ID, tree[0].ID)
	assert.Equal(t, textiles.ID, tree[1].ID)

	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, coffee.ID, tree[0].Children[0].ID)
	assert.Equal(t, spices.ID, tree[0].Children[1].ID)
}

func TestListRootsOnlyWithNullParent(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	root := mustCreate(t, svc, "Agriculture", nil)
	mustCreate(t, svc, "Coffee Tea", &root.ID)

	categories, err := svc.List(context.Background(), dto.ListCategoriesQuery{Parent: "null"})
	require.NoError(t, err)

	require.Len(t, categories, 1)
	assert.Equal(t, root.ID, categories[0].ID)
}

func TestListRejectsMalformedParent(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	_, err := svc.List(context.Background(), dto.ListCategoriesQuery{Parent: "not-a-uuid"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestGetByIdentifierAcceptsSlugAndBuildsBreadcrumb(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	root := mustCreate(t, svc, "Agriculture", nil)
	child := mustCreate(t, svc, "Coffee Tea", &root.ID)

	detail, err := svc.GetByIdentifier(context.Background(), "coffee-tea")
	require.NoError(t, err)

	assert.Equal(t, child.ID, detail.Category.ID)
	require.Len(t, detail.Breadcrumb, 2)
	assert.Equal(t, "agriculture", detail.Breadcrumb[0].Path)
	assert.Equal(t, "agriculture/coffee-tea", detail.Breadcrumb[1].Path)
	assert.Equal(t, "Coffee Tea", detail.Breadcrumb[1].Name)

	require.Len(t, detail.Ancestors, 1)
	assert.Equal(t, root.ID, detail.Ancestors[0].ID)
}

func TestGetByIdentifierHidesNonPublicSlug(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	category := mustCreate(t, svc, "Spices", nil)
	_, err := svc.ToggleStatus(context.Background(), category.ID)
	require.NoError(t, err)

	_, err = svc.GetByIdentifier(context.Background(), "spices")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	// ID lookups still work for admin tooling.
	detail, err := svc.GetByIdentifier(context.Background(), category.ID.String())
	require.NoError(t, err)
	assert.False(t, detail.Category.IsActive)
}

func TestSearchClampsLimit(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := newTestService(repo)

	mustCreate(t, svc, "Coffee Tea", nil)

	_, err := svc.Search(context.Background(), "coffee", 500)
	require.NoError(t, err)
	assert.Equal(t, 50, repo.lastSearchLimit)

	_, err = svc.Search(context.Background(), "coffee", 0)
	require.NoError(t, err)
	assert.Equal(t, 10, repo.lastSearchLimit)
}

func TestSearchPrefersIndexAndPreservesOrder(t *testing.T) {
	repo := newFakeCategoryRepo()
	counter := &fakeProductCounter{counts: map[uuid.UUID]int64{}}
	index := &fakeSearchIndex{}
	svc := NewCategoryService(repo, counter, index, nil)

	a, err := svc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Arabica"})
	require.NoError(t, err)
	b, err := svc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Robusta"})
	require.NoError(t, err)

	// Relevance order differs from name order.
	index.ids = []uuid.UUID{b.ID, a.ID}

	results, err := svc.Search(context.Background(), "coffee", 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, b.ID, results[0].ID)
	assert.Equal(t, a.ID, results[1].ID)
}

func TestSearchFallsBackToDatabaseOnIndexError(t *testing.T) {
	repo := newFakeCategoryRepo()
	counter := &fakeProductCounter{counts: map[uuid.UUID]int64{}}
	index := &fakeSearchIndex{err: errors.New("connection refused")}
	svc := NewCategoryService(repo, counter, index, nil)

	created, err := svc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Coffee Tea"})
	require.NoError(t, err)

	results, err := svc.Search(context.Background(), "coffee", 10)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, created.ID, results[0].ID)
}

func TestWritesReachSearchIndex(t *testing.T) {
	repo := newFakeCategoryRepo()
	counter := &fakeProductCounter{counts: map[uuid.UUID]int64{}}
	index := &fakeSearchIndex{}
	svc := NewCategoryService(repo, counter, index, nil)

	category, err := svc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Spices"})
	require.NoError(t, err)
	assert.Contains(t, index.indexed, category.ID)

	require.NoError(t, svc.Delete(context.Background(), category.ID))
	assert.Contains(t, index.removed, category.ID)
}

func TestRefreshProductCountPersists(t *testing.T) {
	repo := newFakeCategoryRepo()
	counter := &fakeProductCounter{counts: map[uuid.UUID]int64{}}
	svc := NewCategoryService(repo, counter, nil, nil)

	category, err := svc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Spices"})
	require.NoError(t, err)

	counter.counts[category.ID] = 7
	require.NoError(t, svc.RefreshProductCount(context.Background(), category.ID))

	assert.Equal(t, 7, repo.categories[category.ID].ProductCount)
}

func TestDeriveHelper(t *testing.T) {
	child := &entity.Category{Slug: "coffee-tea"}
	parent := &entity.Category{Slug: "agriculture", Path: "agriculture", Level: 0}

	derive(child, parent)
	assert.Equal(t, 1, child.Level)
	assert.Equal(t, "agriculture/coffee-tea", child.Path)

	derive(child, nil)
	assert.Equal(t, 0, child.Level)
	assert.Equal(t, "coffee-tea", child.Path)
}
