package main

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Hussein-Mazeh/TaskTracker/auth"
	"github.com/Hussein-Mazeh/TaskTracker/internal/colors"
	dbpkg "github.com/Hussein-Mazeh/TaskTracker/internal/db"
	"github.com/Hussein-Mazeh/TaskTracker/internal/task"
)

func today() string {
	return time.Now().Format("2006-01-02")
}

func (a *app) userMenu(username string) error {
	for {
		clearScreen()
		fmt.Println(colors.Border("=============================================="))
		fmt.Println(colors.Title(fmt.Sprintf("        Task Manager - %s", username)))
		fmt.Println(colors.Border("=============================================="))
		fmt.Println(colors.Green + "  1. " + colors.White + "Add task" + colors.Reset)
		fmt.Println(colors.Green + "  2. " + colors.White + "List tasks" + colors.Reset)
		fmt.Println(colors.Green + "  3. " + colors.White + "Edit task" + colors.Reset)
		fmt.Println(colors.Green + "  4. " + colors.White + "Remove task" + colors.Reset)
		fmt.Println(colors.Green + "  5. " + colors.White + "Mark task as done" + colors.Reset)
		fmt.Println(colors.Blue + "  6. " + colors.White + "Search & filter" + colors.Reset)
		fmt.Println(colors.Blue + "  7. " + colors.White + "Statistics" + colors.Reset)
		fmt.Println(colors.Magenta + "  8. " + colors.White + "Change password" + colors.Reset)
		fmt.Println(colors.Red + "  0. " + colors.White + "Logout" + colors.Reset)
		fmt.Println(colors.Border("=============================================="))

		choice, err := a.readLine(colors.Prompt("Enter your choice: "))
		if err != nil {
			return err
		}

		var actionErr error
		switch choice {
		case "1":
			actionErr = a.addTask(username)
		case "2":
			actionErr = a.listTasks(username, true)
		case "3":
			actionErr = a.editTask(username)
		case "4":
			actionErr = a.removeTask(username)
		case "5":
			actionErr = a.markTaskDone(username)
		case "6":
			actionErr = a.searchFilterMenu(username)
		case "7":
			actionErr = a.showUserStats(username)
		case "8":
			actionErr = a.changePasswordFlow(username)
		case "0":
			return nil
		default:
			fmt.Println(colors.Error("\nPlease choose an option between 0 and 8."))
		}
		if actionErr != nil {
			return actionErr
		}
		a.pause()
	}
}

func (a *app) addTask(username string) error {
	fmt.Println(colors.Title("\n--- Add New Task ---"))

	t := task.Task{Username: username}
	for {
		title, err := a.readLine(colors.Prompt("Title (required): "))
		if err != nil {
			return err
		}
		if title != "" {
			t.Title = title
			break
		}
		fmt.Println(colors.Error("Title is required. Please enter a title."))
	}

	description, err := a.readLine(colors.Prompt("Description (optional): "))
	if err != nil {
		return err
	}
	t.Description = description

	for {
		raw, err := a.readLine(colors.Prompt("Priority (1=High, 2=Medium, 3=Low): "))
		if err != nil {
			return err
		}
		p, convErr := strconv.Atoi(raw)
		if convErr == nil && task.ValidPriority(p) {
			t.Priority = p
			break
		}
		fmt.Println(colors.Error("Priority must be 1, 2, or 3. Please try again."))
	}

	for {
		deadline, err := a.readLine(colors.Prompt("Deadline (YYYY-MM-DD, required): "))
		if err != nil {
			return err
		}
		if _, parseErr := time.Parse("2006-01-02", deadline); parseErr == nil {
			t.Deadline = deadline
			break
		}
		fmt.Println(colors.Error("Deadline must be in YYYY-MM-DD format (e.g., 2025-12-31)."))
	}

	for {
		category, err := a.readLine(colors.Prompt("Category (required): "))
		if err != nil {
			return err
		}
		if category != "" {
			t.Category = category
			break
		}
		fmt.Println(colors.Error("Category is required. Please enter a category."))
	}

	if _, err := dbpkg.InsertTask(a.db, t); err != nil {
		a.log.Error("add task failed", "err", err)
		fmt.Println(colors.Error("Could not save the task. Try again later."))
		return nil
	}
	fmt.Println(colors.Success("Task added successfully!"))
	return nil
}

func (a *app) listTasks(username string, showAll bool) error {
	tasks, err := dbpkg.GetTasksByUser(a.db, username)
	if err != nil {
		a.log.Error("list tasks failed", "err", err)
		fmt.Println(colors.Error("Could not load tasks. Try again later."))
		return nil
	}
	if !showAll {
		tasks = task.Pending(tasks)
	}
	displayTaskList(tasks, "Task List", false)
	return nil
}

// pickTask lists the user's tasks and asks for one by its list number.
// It returns false when the list is empty or the input is invalid.
func (a *app) pickTask(username, prompt string) (task.Task, bool, error) {
	tasks, err := dbpkg.GetTasksByUser(a.db, username)
	if err != nil {
		a.log.Error("load tasks failed", "err", err)
		fmt.Println(colors.Error("Could not load tasks. Try again later."))
		return task.Task{}, false, nil
	}
	displayTaskList(tasks, "Task List", false)
	if len(tasks) == 0 {
		return task.Task{}, false, nil
	}

	raw, err := a.readLine(colors.Prompt(prompt))
	if err != nil {
		return task.Task{}, false, err
	}
	idx, convErr := strconv.Atoi(raw)
	if convErr != nil || idx < 1 || idx > len(tasks) {
		fmt.Println(colors.Error("Invalid task number."))
		return task.Task{}, false, nil
	}
	return tasks[idx-1], true, nil
}

func (a *app) editTask(username string) error {
	t, ok, err := a.pickTask(username, "Enter the task number to edit: ")
	if err != nil || !ok {
		return err
	}

	fmt.Println(colors.Info("Leave blank to keep current value."))

	title, err := a.readLine(fmt.Sprintf("New title [%s%s%s]: ", colors.Cyan, t.Title, colors.Reset))
	if err != nil {
		return err
	}
	if title != "" {
		t.Title = title
	}

	description, err := a.readLine(fmt.Sprintf("New description [%s%s%s]: ", colors.Cyan, t.Description, colors.Reset))
	if err != nil {
		return err
	}
	if description != "" {
		t.Description = description
	}

	rawPriority, err := a.readLine(fmt.Sprintf("New priority [%s%d%s]: ", colors.Cyan, t.Priority, colors.Reset))
	if err != nil {
		return err
	}
	if rawPriority != "" {
		if p, convErr := strconv.Atoi(rawPriority); convErr == nil && task.ValidPriority(p) {
			t.Priority = p
		} else {
			fmt.Println(colors.Warning("Priority unchanged: must be 1, 2, or 3."))
		}
	}

	deadline, err := a.readLine(fmt.Sprintf("New deadline [%s%s%s]: ", colors.Cyan, t.Deadline, colors.Reset))
	if err != nil {
		return err
	}
	if deadline != "" {
		if _, parseErr := time.Parse("2006-01-02", deadline); parseErr == nil {
			t.Deadline = deadline
		} else {
			fmt.Println(colors.Warning("Deadline unchanged: must be YYYY-MM-DD."))
		}
	}

	category, err := a.readLine(fmt.Sprintf("New category [%s%s%s]: ", colors.Cyan, t.Category, colors.Reset))
	if err != nil {
		return err
	}
	if category != "" {
		t.Category = category
	}

	if err := dbpkg.UpdateTask(a.db, t); err != nil {
		a.log.Error("update task failed", "err", err)
		fmt.Println(colors.Error("Could not update the task. Try again later."))
		return nil
	}
	fmt.Println(colors.Success("Task updated successfully!"))
	return nil
}

func (a *app) removeTask(username string) error {
	t, ok, err := a.pickTask(username, "Enter the task number to remove: ")
	if err != nil || !ok {
		return err
	}

	if err := dbpkg.DeleteTask(a.db, t.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			fmt.Println(colors.Error("Task no longer exists."))
			return nil
		}
		a.log.Error("remove task failed", "err", err)
		fmt.Println(colors.Error("Could not remove the task. Try again later."))
		return nil
	}
	fmt.Println(colors.Success(fmt.Sprintf("Task %q removed successfully!", t.Title)))
	return nil
}

func (a *app) markTaskDone(username string) error {
	t, ok, err := a.pickTask(username, "Enter the task number to mark as done: ")
	if err != nil || !ok {
		return err
	}
	if t.Completed {
		fmt.Println(colors.Warning("Task is already marked as done."))
		return nil
	}

	if err := dbpkg.SetTaskCompleted(a.db, t.ID, true); err != nil {
		a.log.Error("mark task failed", "err", err)
		fmt.Println(colors.Error("Could not update the task. Try again later."))
		return nil
	}
	fmt.Println(colors.Success(fmt.Sprintf("Task %q marked as done!", t.Title)))
	return nil
}

func (a *app) changePasswordFlow(username string) error {
	fmt.Println(colors.Title("\n--- Change Password ---"))

	current, err := promptPassword(colors.Prompt("Current password: "))
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	next, err := promptPassword(colors.Prompt("New password: "))
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	confirm, err := promptPassword(colors.Prompt("Confirm new password: "))
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	if next != confirm {
		fmt.Println(colors.Error("Passwords do not match."))
		return nil
	}
	if err := auth.ValidateNewPassword(username, next); err != nil {
		fmt.Println(colors.Error(err.Error()))
		return nil
	}

	if err := a.svc.ChangePassword(username, current, next); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidPassword):
			fmt.Println(colors.Error("Current password is incorrect."))
		case errors.Is(err, auth.ErrStoreUnavailable):
			a.log.Error("change password failed, store unavailable", "err", err)
			fmt.Println(colors.Error("The account store is unavailable. Try again later."))
		default:
			return err
		}
		return nil
	}
	fmt.Println(colors.Success("Password changed successfully!"))
	return nil
}

func (a *app) searchFilterMenu(username string) error {
	clearScreen()
	fmt.Println(colors.Border("=============================================="))
	fmt.Println(colors.Title(fmt.Sprintf("        Search & Filter - %s", username)))
	fmt.Println(colors.Border("=============================================="))
	fmt.Println(colors.Green + "  1. " + colors.White + "By priority" + colors.Reset)
	fmt.Println(colors.Green + "  2. " + colors.White + "By category" + colors.Reset)
	fmt.Println(colors.Green + "  3. " + colors.White + "By deadline range" + colors.Reset)
	fmt.Println(colors.Green + "  4. " + colors.White + "Pending, sorted" + colors.Reset)
	fmt.Println(colors.Red + "  0. " + colors.White + "Back" + colors.Reset)

	choice, err := a.readLine(colors.Prompt("Enter your choice: "))
	if err != nil {
		return err
	}

	tasks, dbErr := dbpkg.GetTasksByUser(a.db, username)
	if dbErr != nil {
		a.log.Error("load tasks failed", "err", dbErr)
		fmt.Println(colors.Error("Could not load tasks. Try again later."))
		return nil
	}

	switch choice {
	case "1":
		raw, err := a.readLine(colors.Prompt("Priority (1=High, 2=Medium, 3=Low): "))
		if err != nil {
			return err
		}
		p, convErr := strconv.Atoi(raw)
		if convErr != nil || !task.ValidPriority(p) {
			fmt.Println(colors.Error("Priority must be 1, 2, or 3."))
			return nil
		}
		displayTaskList(task.ByPriority(tasks, p),
			fmt.Sprintf("Tasks with priority %s", task.PriorityLabel(p)), false)
	case "2":
		category, err := a.readLine(colors.Prompt("Category: "))
		if err != nil {
			return err
		}
		displayTaskList(task.ByCategory(tasks, category),
			fmt.Sprintf("Tasks in category %q", category), false)
	case "3":
		from, err := a.readLine(colors.Prompt("From (YYYY-MM-DD): "))
		if err != nil {
			return err
		}
		to, err := a.readLine(colors.Prompt("To (YYYY-MM-DD): "))
		if err != nil {
			return err
		}
		displayTaskList(task.ByDeadlineRange(tasks, from, to),
			fmt.Sprintf("Tasks due between %s and %s", from, to), false)
	case "4":
		pending := task.Pending(tasks)
		sortChoice, err := a.readLine(colors.Prompt("Sort by (1=Priority, 2=Deadline): "))
		if err != nil {
			return err
		}
		switch sortChoice {
		case "1":
			pending = task.SortByPriority(pending)
		case "2":
			pending = task.SortByDeadline(pending)
		}
		displayTaskList(pending, "Pending Tasks", false)
	case "0":
	default:
		fmt.Println(colors.Error("Please choose an option between 0 and 4."))
	}
	return nil
}

func (a *app) showUserStats(username string) error {
	tasks, err := dbpkg.GetTasksByUser(a.db, username)
	if err != nil {
		a.log.Error("load tasks failed", "err", err)
		fmt.Println(colors.Error("Could not load tasks. Try again later."))
		return nil
	}
	displayStats(task.Summarize(tasks, today()), fmt.Sprintf("Statistics for %s", username))
	return nil
}

func displayStats(s task.Stats, heading string) {
	fmt.Println(colors.Title(fmt.Sprintf("\n--- %s ---", heading)))
	if s.Total == 0 {
		fmt.Println(colors.Warning("No tasks found."))
		return
	}

	fmt.Printf("%sTotal tasks:%s %s%d%s\n", colors.White, colors.Reset, colors.Cyan, s.Total, colors.Reset)

	rateColor := colors.Red
	switch {
	case s.CompletionRate >= 80:
		rateColor = colors.Green
	case s.CompletionRate >= 50:
		rateColor = colors.Yellow
	}
	fmt.Printf("%sCompletion rate:%s %s%.1f%%%s\n", colors.White, colors.Reset, rateColor, s.CompletionRate, colors.Reset)

	fmt.Printf("%sCompleted:%s %s%d%s\n", colors.White, colors.Reset, colors.Green, s.Completed, colors.Reset)
	fmt.Printf("%sPending:%s %s%d%s\n", colors.White, colors.Reset, colors.Yellow, s.Pending, colors.Reset)
	fmt.Printf("%sOverdue:%s %s%d%s\n", colors.White, colors.Reset, colors.Red, s.Overdue, colors.Reset)
	fmt.Printf("%sUnique categories:%s %s%d%s\n", colors.White, colors.Reset, colors.Cyan, len(s.Categories), colors.Reset)

	if len(s.TopCategories) > 0 {
		fmt.Println(colors.Info("\nTop categories:"))
		for i, cc := range s.TopCategories {
			fmt.Printf("  %d. %s%s%s: %d task(s)\n", i+1, colors.Magenta, cc.Category, colors.Reset, cc.Count)
		}
	}
}

func displayTaskList(tasks []task.Task, heading string, includeUser bool) {
	fmt.Println(colors.Title(fmt.Sprintf("\n--- %s ---", heading)))
	if len(tasks) == 0 {
		fmt.Println(colors.Warning("No tasks found."))
		return
	}
	for i, t := range tasks {
		displayTask(t, i+1, includeUser)
	}
}

func displayTask(t task.Task, number int, includeUser bool) {
	status := colors.Warning("Pending")
	if t.Completed {
		status = colors.Success("Done")
	}

	priorityColor := colors.Green
	switch t.Priority {
	case task.PriorityHigh:
		priorityColor = colors.Red
	case task.PriorityMedium:
		priorityColor = colors.Yellow
	}

	owner := ""
	if includeUser {
		owner = fmt.Sprintf("[%s%s%s] ", colors.Magenta, t.Username, colors.Reset)
	}

	fmt.Printf("%s %s%s%s | %s | Priority: %s%s%s | Deadline: %s%s%s | Category: %s%s%s | Status: %s\n",
		colors.Info(fmt.Sprintf("%d.", number)),
		owner, colors.White+t.Title, colors.Reset,
		t.Description,
		priorityColor, task.PriorityLabel(t.Priority), colors.Reset,
		colors.Cyan, t.Deadline, colors.Reset,
		colors.Magenta, t.Category, colors.Reset,
		status,
	)
}
