package models

import "github.com/google/uuid"

// LoginRequest is the credential payload for admin and professor login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AlunoLoginRequest adds the tenant selector: the same email may exist under
// several professors.
type AlunoLoginRequest struct {
	Email       string    `json:"email" binding:"required,email"`
	Password    string    `json:"password" binding:"required"`
	ProfessorID uuid.UUID `json:"professor_id" binding:"required"`
}

// UserInfo is the identity block returned alongside a fresh token.
type UserInfo struct {
	ID        uuid.UUID `json:"id"`
	Nome      string    `json:"nome"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

// LoginResponse is the success payload of every login endpoint.
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

type CreateProdutoRequest struct {
	Titulo    string  `json:"titulo" binding:"required"`
	Descricao *string `json:"descricao"`
}

type UpdateProdutoRequest struct {
	Titulo    *string `json:"titulo"`
	Descricao *string `json:"descricao"`
	Ativo     *bool   `json:"ativo"`
}

type CreateModuloRequest struct {
	Titulo string `json:"titulo" binding:"required"`
}

type UpdateModuloRequest struct {
	Titulo *string `json:"titulo"`
}

type CreateAulaRequest struct {
	Titulo    string  `json:"titulo" binding:"required"`
	Descricao *string `json:"descricao"`
}

type UpdateAulaRequest struct {
	Titulo    *string `json:"titulo"`
	Descricao *string `json:"descricao"`
}

// ReorderRequest carries the complete ordered id list for a parent's
// children. The server rejects it unless the set matches exactly.
type ReorderRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

type CreatePlanoRequest struct {
	Nome          string      `json:"nome" binding:"required"`
	Descricao     *string     `json:"descricao"`
	PrecoCentavos int64       `json:"preco_centavos" binding:"min=0"`
	ProdutoIDs    []uuid.UUID `json:"produto_ids"`
}

type UpdatePlanoRequest struct {
	Nome          *string     `json:"nome"`
	Descricao     *string     `json:"descricao"`
	PrecoCentavos *int64      `json:"preco_centavos"`
	Ativo         *bool       `json:"ativo"`
	ProdutoIDs    []uuid.UUID `json:"produto_ids"`
}

type CreateInscricaoRequest struct {
	PlanoID uuid.UUID `json:"plano_id" binding:"required"`
}

type CreateProfessorRequest struct {
	Nome     string `json:"nome" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type UpdateProfessorRequest struct {
	Nome  *string `json:"nome"`
	Bio   *string `json:"bio"`
	Ativo *bool   `json:"ativo"`
}

type CreateAlunoRequest struct {
	Nome     string `json:"nome" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type UpdateProfileRequest struct {
	Nome *string `json:"nome"`
	Bio  *string `json:"bio"`
}
