package friend

import "github.com/KirkDiggler/pickup/internal/models"

type CreateFriendInput struct {
	Friend *models.Friend
}

type SaveFriendInput struct {
	Friend *models.Friend
}

type GetFriendInput struct {
	FriendID string
}

type GetFriendByPhoneInput struct {
	Phone string
}

type ListActiveFriendsOutput struct {
	Friends []*models.Friend
}
