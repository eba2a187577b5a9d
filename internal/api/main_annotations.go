// @title           affilinks API
// @version         1.0
// @description     Affiliate link catalogue. Reads are public; writes need a Personal Access Token.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerToken
// @in              header
// @name            Authorization
// @description     Type "Bearer" followed by a space and your API token. Example: "Bearer af_xxx"
package api
