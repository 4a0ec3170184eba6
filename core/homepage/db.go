package homepage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vietcloud/vpshop/core/product"
)

var ErrNotFound = errors.New("homepage entry not found")

func CreateBanner(ctx context.Context, db sqlx.ExtContext, b Banner) error {
	const q = `
	INSERT INTO banners
		(banner_id, title, image_url, link_url, position, active, created_at, updated_at)
	VALUES
		(:banner_id, :title, :image_url, :link_url, :position, :active, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, b); err != nil {
		return fmt.Errorf("inserting banner: %w", err)
	}

	return nil
}

func UpdateBanner(ctx context.Context, db sqlx.ExtContext, b Banner) error {
	const q = `
	UPDATE banners SET
		title = :title,
		image_url = :image_url,
		link_url = :link_url,
		position = :position,
		active = :active,
		updated_at = :updated_at
	WHERE banner_id = :banner_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, b); err != nil {
		return fmt.Errorf("updating banner[%s]: %w", b.ID, err)
	}

	return nil
}

func FetchBanner(ctx context.Context, db sqlx.ExtContext, id string) (Banner, error) {
	const q = `SELECT * FROM banners WHERE banner_id = $1`

	var b Banner
	if err := sqlx.GetContext(ctx, db, &b, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Banner{}, ErrNotFound
		}
		return Banner{}, fmt.Errorf("selecting banner[%s]: %w", id, err)
	}

	return b, nil
}

func FetchBanners(ctx context.Context, db sqlx.ExtContext, onlyActive bool) ([]Banner, error) {
	q := `SELECT * FROM banners ORDER BY position, created_at`
	if onlyActive {
		q = `SELECT * FROM banners WHERE active ORDER BY position, created_at`
	}

	bs := []Banner{}
	if err := sqlx.SelectContext(ctx, db, &bs, q); err != nil {
		return nil, fmt.Errorf("selecting banners: %w", err)
	}

	return bs, nil
}

func DeleteBanner(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `DELETE FROM banners WHERE banner_id = $1`

	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("deleting banner[%s]: %w", id, err)
	}

	return nil
}

func CreateFAQ(ctx context.Context, db sqlx.ExtContext, f FAQ) error {
	const q = `
	INSERT INTO faqs
		(faq_id, question, answer, position, active, created_at, updated_at)
	VALUES
		(:faq_id, :question, :answer, :position, :active, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, f); err != nil {
		return fmt.Errorf("inserting faq: %w", err)
	}

	return nil
}

func UpdateFAQ(ctx context.Context, db sqlx.ExtContext, f FAQ) error {
	const q = `
	UPDATE faqs SET
		question = :question,
		answer = :answer,
		position = :position,
		active = :active,
		updated_at = :updated_at
	WHERE faq_id = :faq_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, f); err != nil {
		return fmt.Errorf("updating faq[%s]: %w", f.ID, err)
	}

	return nil
}

func FetchFAQ(ctx context.Context, db sqlx.ExtContext, id string) (FAQ, error) {
	const q = `SELECT * FROM faqs WHERE faq_id = $1`

	var f FAQ
	if err := sqlx.GetContext(ctx, db, &f, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FAQ{}, ErrNotFound
		}
		return FAQ{}, fmt.Errorf("selecting faq[%s]: %w", id, err)
	}

	return f, nil
}

func FetchFAQs(ctx context.Context, db sqlx.ExtContext, onlyActive bool) ([]FAQ, error) {
	q := `SELECT * FROM faqs ORDER BY position, created_at`
	if onlyActive {
		q = `SELECT * FROM faqs WHERE active ORDER BY position, created_at`
	}

	fs := []FAQ{}
	if err := sqlx.SelectContext(ctx, db, &fs, q); err != nil {
		return nil, fmt.Errorf("selecting faqs: %w", err)
	}

	return fs, nil
}

func DeleteFAQ(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `DELETE FROM faqs WHERE faq_id = $1`

	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("deleting faq[%s]: %w", id, err)
	}

	return nil
}

func CreateFeature(ctx context.Context, db sqlx.ExtContext, f Feature) error {
	const q = `
	INSERT INTO service_features
		(feature_id, title, body, icon, position, active, created_at, updated_at)
	VALUES
		(:feature_id, :title, :body, :icon, :position, :active, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, f); err != nil {
		return fmt.Errorf("inserting service feature: %w", err)
	}

	return nil
}

func UpdateFeature(ctx context.Context, db sqlx.ExtContext, f Feature) error {
	const q = `
	UPDATE service_features SET
		title = :title,
		body = :body,
		icon = :icon,
		position = :position,
		active = :active,
		updated_at = :updated_at
	WHERE feature_id = :feature_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, f); err != nil {
		return fmt.Errorf("updating service feature[%s]: %w", f.ID, err)
	}

	return nil
}

func FetchFeature(ctx context.Context, db sqlx.ExtContext, id string) (Feature, error) {
	const q = `SELECT * FROM service_features WHERE feature_id = $1`

	var f Feature
	if err := sqlx.GetContext(ctx, db, &f, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Feature{}, ErrNotFound
		}
		return Feature{}, fmt.Errorf("selecting service feature[%s]: %w", id, err)
	}

	return f, nil
}

func FetchFeatures(ctx context.Context, db sqlx.ExtContext, onlyActive bool) ([]Feature, error) {
	q := `SELECT * FROM service_features ORDER BY position, created_at`
	if onlyActive {
		q = `SELECT * FROM service_features WHERE active ORDER BY position, created_at`
	}

	fs := []Feature{}
	if err := sqlx.SelectContext(ctx, db, &fs, q); err != nil {
		return nil, fmt.Errorf("selecting service features: %w", err)
	}

	return fs, nil
}

func DeleteFeature(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `DELETE FROM service_features WHERE feature_id = $1`

	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("deleting service feature[%s]: %w", id, err)
	}

	return nil
}

// AddFeatured pins a product, replacing its position if already pinned.
func AddFeatured(ctx context.Context, db sqlx.ExtContext, fn FeaturedNew) error {
	const q = `
	INSERT INTO featured_products (product_id, position, created_at)
	VALUES ($1, $2, now())
	ON CONFLICT (product_id) DO UPDATE SET position = EXCLUDED.position`

	if _, err := db.ExecContext(ctx, q, fn.ProductID, fn.Position); err != nil {
		return fmt.Errorf("pinning featured product[%s]: %w", fn.ProductID, err)
	}

	return nil
}

func RemoveFeatured(ctx context.Context, db sqlx.ExtContext, productID string) error {
	const q = `DELETE FROM featured_products WHERE product_id = $1`

	if _, err := db.ExecContext(ctx, q, productID); err != nil {
		return fmt.Errorf("unpinning featured product[%s]: %w", productID, err)
	}

	return nil
}

// FetchFeatured returns the pinned plans in display order, active only.
func FetchFeatured(ctx context.Context, db sqlx.ExtContext) ([]product.Product, error) {
	const q = `
	SELECT p.* FROM products p
	JOIN featured_products fp ON fp.product_id = p.product_id
	WHERE p.active
	ORDER BY fp.position, fp.created_at`

	ps := []product.Product{}
	if err := sqlx.SelectContext(ctx, db, &ps, q); err != nil {
		return nil, fmt.Errorf("selecting featured products: %w", err)
	}

	return ps, nil
}
