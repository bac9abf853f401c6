package catalog

// Migrations returns the DDL for the catalog tables.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS products (
		    id      INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		    code    VARCHAR(64)  NOT NULL,
		    created DATETIME     NOT NULL,
		    UNIQUE KEY ux_products_code (code)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS product_translations (
		    id         INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		    product_id INT UNSIGNED NOT NULL,
		    locale     VARCHAR(16)  NOT NULL,
		    slug       VARCHAR(191) NOT NULL,
		    title      VARCHAR(255) NOT NULL,
		    UNIQUE KEY ux_product_translations_locale (product_id, locale),
		    KEY ix_product_translations_slug (locale, slug),
		    CONSTRAINT fk_product_translations_product
		        FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS pages (
		    id     INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		    locale VARCHAR(16)  NOT NULL,
		    slug   VARCHAR(191) NOT NULL,
		    title  VARCHAR(255) NOT NULL,
		    UNIQUE KEY ux_pages_locale_slug (locale, slug)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
}
