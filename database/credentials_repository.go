package database

import (
	"crosspost/models"
	"crosspost/utils"

	"github.com/pkg/errors"
)

// SaveCredentials upserts a user's credentials for one platform. Tokens are
// encrypted at rest when TOKEN_ENCRYPTION_KEY is configured.
func (d *Database) SaveCredentials(cred *models.PlatformCredentials) error {
	accessToken, err := utils.EncryptToken(cred.AccessToken)
	if err != nil {
		return errors.Wrap(err, "encrypt access token")
	}

	query := `INSERT INTO credentials (id, user_id, platform, access_token, refresh_token, secret,
			  token_type, expires_at, platform_user_id, platform_page_id, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
			  ON CONFLICT (user_id, platform)
			  DO UPDATE SET access_token = $4, refresh_token = $5, secret = $6, token_type = $7,
			                expires_at = $8, platform_user_id = $9, platform_page_id = $10, updated_at = $11`

	_, err = d.DB.Exec(query, cred.ID, cred.UserID, cred.Platform, accessToken,
		cred.RefreshToken, cred.Secret, cred.TokenType, cred.ExpiresAt,
		cred.PlatformUserID, cred.PlatformPageID, cred.CreatedAt)
	return errors.Wrap(err, "save credentials")
}

func (d *Database) GetCredentials(userID string, platform models.Platform) (*models.PlatformCredentials, error) {
	cred := &models.PlatformCredentials{}
	var refreshToken, secret, platformUserID, platformPageID *string

	query := `SELECT id, user_id, platform, access_token, refresh_token, secret, token_type,
			  expires_at, platform_user_id, platform_page_id, created_at, updated_at
			  FROM credentials WHERE user_id = $1 AND platform = $2`

	err := d.DB.QueryRow(query, userID, platform).Scan(&cred.ID, &cred.UserID,
		&cred.Platform, &cred.AccessToken, &refreshToken, &secret, &cred.TokenType,
		&cred.ExpiresAt, &platformUserID, &platformPageID, &cred.CreatedAt, &cred.UpdatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "get credentials")
	}

	if refreshToken != nil {
		cred.RefreshToken = *refreshToken
	}
	if secret != nil {
		cred.Secret = *secret
	}
	if platformUserID != nil {
		cred.PlatformUserID = *platformUserID
	}
	if platformPageID != nil {
		cred.PlatformPageID = *platformPageID
	}

	cred.AccessToken, err = utils.DecryptToken(cred.AccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "decrypt access token")
	}

	return cred, nil
}

// GetConnectedPlatforms lists the platforms a user has credentials for.
func (d *Database) GetConnectedPlatforms(userID string) ([]models.Platform, error) {
	query := `SELECT platform FROM credentials WHERE user_id = $1 ORDER BY platform`

	rows, err := d.DB.Query(query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get connected platforms")
	}
	defer rows.Close()

	platforms := []models.Platform{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			continue
		}
		platforms = append(platforms, models.Platform(p))
	}
	return platforms, nil
}

func (d *Database) DeleteCredentials(userID string, platform models.Platform) error {
	query := `DELETE FROM credentials WHERE user_id = $1 AND platform = $2`
	_, err := d.DB.Exec(query, userID, platform)
	return errors.Wrap(err, "delete credentials")
}
